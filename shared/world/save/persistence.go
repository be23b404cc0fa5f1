package save

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChunkModel é a linha persistida de uma coluna de chunk.
type ChunkModel struct {
	ID      string `gorm:"primaryKey"` // "X_Z"
	X       int32  `gorm:"index"`
	Z       int32  `gorm:"index"`
	Data    []byte // blob opaco (EncodeChunk)
	SavedAt int64
}

// WorldMetadata guarda pares chave/valor do mundo (seed, identidade).
type WorldMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const (
	metaKeySeed    = "seed"
	metaKeyWorldID = "world_id"
	metaKeySavedAt = "saved_at"
)

// Store é o colaborador de persistência: carrega e grava colunas de chunk
// tratando o formato como opaco. Escritas no sqlite são serializadas.
type Store struct {
	db   *gorm.DB
	dbMu sync.Mutex
}

// Open abre (ou cria) o banco do mundo e roda as migrações.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("abrir banco %q: %w", path, err)
	}
	if err := db.AutoMigrate(&ChunkModel{}, &WorldMetadata{}); err != nil {
		return nil, fmt.Errorf("migrar banco %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// EnsureMetadata garante seed e identidade do mundo no banco. Na primeira
// abertura grava a seed dada e um id novo; nas seguintes retorna a seed
// persistida (que prevalece sobre a da configuração, mantendo a geração
// determinística do save).
func (s *Store) EnsureMetadata(seed int64) (worldID string, effectiveSeed int64, err error) {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	var row WorldMetadata
	res := s.db.First(&row, "key = ?", metaKeySeed)
	switch {
	case res.Error == nil:
		effectiveSeed, err = strconv.ParseInt(row.Value, 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("seed corrompida no banco: %w", err)
		}
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		effectiveSeed = seed
		if err := s.db.Save(&WorldMetadata{Key: metaKeySeed, Value: strconv.FormatInt(seed, 10)}).Error; err != nil {
			return "", 0, err
		}
	default:
		return "", 0, res.Error
	}

	res = s.db.First(&row, "key = ?", metaKeyWorldID)
	switch {
	case res.Error == nil:
		worldID = row.Value
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		worldID = uuid.NewString()
		if err := s.db.Save(&WorldMetadata{Key: metaKeyWorldID, Value: worldID}).Error; err != nil {
			return "", 0, err
		}
		log.Printf("[Save] Mundo novo criado: %s (seed %d)", worldID, effectiveSeed)
	default:
		return "", 0, res.Error
	}

	return worldID, effectiveSeed, nil
}

// Save persiste o chunk (write-back). Limpa a marca de sujeira em caso de
// sucesso.
func (s *Store) Save(c *world.Chunk) error {
	data := EncodeChunk(c)
	coord := c.Coord()
	model := ChunkModel{
		ID:      chunkID(coord),
		X:       coord.X,
		Z:       coord.Z,
		Data:    data,
		SavedAt: time.Now().Unix(),
	}

	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	if err := s.db.Save(&model).Error; err != nil {
		return fmt.Errorf("salvar chunk %s: %w", coord, err)
	}
	if err := s.db.Save(&WorldMetadata{Key: metaKeySavedAt, Value: strconv.FormatInt(model.SavedAt, 10)}).Error; err != nil {
		return err
	}
	c.ClearDirty()
	return nil
}

// Load tenta restaurar o chunk do banco. Retorna false se a coluna nunca
// foi salva (o chamador sintetiza o terreno).
func (s *Store) Load(coord util.ChunkCoord, c *world.Chunk) (bool, error) {
	var model ChunkModel

	s.dbMu.Lock()
	res := s.db.First(&model, "id = ?", chunkID(coord))
	s.dbMu.Unlock()

	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if res.Error != nil {
		return false, fmt.Errorf("carregar chunk %s: %w", coord, res.Error)
	}

	if err := DecodeChunk(model.Data, c); err != nil {
		return false, fmt.Errorf("decodificar chunk %s: %w", coord, err)
	}
	return true, nil
}

// Close fecha o banco.
func (s *Store) Close() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func chunkID(coord util.ChunkCoord) string {
	return fmt.Sprintf("%d_%d", coord.X, coord.Z)
}
