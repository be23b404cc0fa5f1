// Package save implementa a persistência de chunks: codificação binária
// compacta das colunas (RLE sobre protobuf wire format) e o armazenamento
// em sqlite com write-back na descarga e autosave limitado por taxa.
package save

import (
	"fmt"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"

	"google.golang.org/protobuf/encoding/protowire"
)

// codecVersion identifica o layout do blob para migrações futuras.
const codecVersion = 1

// Campos do blob de chunk (protobuf wire format).
const (
	fieldVersion    = 1
	fieldBlocks     = 2
	fieldSkyLight   = 3
	fieldBlockLight = 4
)

// chunkVolume é o número de voxels de uma coluna inteira.
const chunkVolume = util.SectionSize * util.SectionSize * (util.WorldMaxY - util.WorldMinY)

// EncodeChunk serializa os blocos e as duas camadas de luz do chunk em um
// blob opaco: pares RLE (valor, comprimento) como varints, embrulhados em
// campos length-delimited do wire format do protobuf.
func EncodeChunk(c *world.Chunk) []byte {
	blocks := make([]uint64, 0, chunkVolume/16)
	sky := make([]uint64, 0, 64)
	blk := make([]uint64, 0, 64)

	forEachCell(c, func(lx, y, lz int32) {
		appendRLE(&blocks, uint64(c.Block(lx, y, lz)))
		appendRLE(&sky, uint64(c.SkyLight(lx, y, lz)))
		appendRLE(&blk, uint64(c.BlockLight(lx, y, lz)))
	})

	buf := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, codecVersion)
	buf = appendRuns(buf, fieldBlocks, blocks)
	buf = appendRuns(buf, fieldSkyLight, sky)
	buf = appendRuns(buf, fieldBlockLight, blk)
	return buf
}

// DecodeChunk restaura blocos e luz de um blob para dentro do chunk.
func DecodeChunk(data []byte, c *world.Chunk) error {
	var blocks, sky, blk []byte

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("chunk %s: tag inválida", c.Coord())
		}
		data = data[n:]

		switch num {
		case fieldVersion:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("chunk %s: versão inválida", c.Coord())
			}
			if v != codecVersion {
				return fmt.Errorf("chunk %s: versão de codec desconhecida %d", c.Coord(), v)
			}
			data = data[n:]
		case fieldBlocks, fieldSkyLight, fieldBlockLight:
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("chunk %s: campo %d truncado", c.Coord(), num)
			}
			data = data[n:]
			switch num {
			case fieldBlocks:
				blocks = b
			case fieldSkyLight:
				sky = b
			case fieldBlockLight:
				blk = b
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("chunk %s: campo %d inválido", c.Coord(), num)
			}
			data = data[n:]
		}
	}

	if err := applyRuns(blocks, c, func(lx, y, lz int32, v uint64) {
		if id := world.BlockID(v); id != world.Air {
			c.SetBlockRaw(lx, y, lz, id)
		}
	}); err != nil {
		return fmt.Errorf("blocos: %w", err)
	}
	if err := applyRuns(sky, c, func(lx, y, lz int32, v uint64) {
		c.SetSkyLight(lx, y, lz, uint8(v))
	}); err != nil {
		return fmt.Errorf("luz do céu: %w", err)
	}
	if err := applyRuns(blk, c, func(lx, y, lz int32, v uint64) {
		c.SetBlockLight(lx, y, lz, uint8(v))
	}); err != nil {
		return fmt.Errorf("luz emitida: %w", err)
	}
	return nil
}

// forEachCell percorre a coluna em ordem canônica (x, depois z, depois y
// ascendente), a mesma na codificação e na decodificação.
func forEachCell(c *world.Chunk, fn func(lx, y, lz int32)) {
	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			for y := int32(util.WorldMinY); y < util.WorldMaxY; y++ {
				fn(lx, y, lz)
			}
		}
	}
}

// appendRLE acumula um valor na sequência RLE (pares valor, comprimento).
func appendRLE(runs *[]uint64, v uint64) {
	n := len(*runs)
	if n >= 2 && (*runs)[n-2] == v {
		(*runs)[n-1]++
		return
	}
	*runs = append(*runs, v, 1)
}

// appendRuns embrulha os pares RLE num campo length-delimited.
func appendRuns(buf []byte, field protowire.Number, runs []uint64) []byte {
	var body []byte
	for _, v := range runs {
		body = protowire.AppendVarint(body, v)
	}
	buf = protowire.AppendTag(buf, field, protowire.BytesType)
	return protowire.AppendBytes(buf, body)
}

// applyRuns desfaz os pares RLE, entregando cada célula na ordem canônica.
func applyRuns(body []byte, c *world.Chunk, apply func(lx, y, lz int32, v uint64)) error {
	type run struct {
		value uint64
		count uint64
	}
	var runs []run
	for len(body) > 0 {
		v, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return fmt.Errorf("varint de valor inválido")
		}
		body = body[n:]
		cnt, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return fmt.Errorf("varint de comprimento inválido")
		}
		body = body[n:]
		runs = append(runs, run{v, cnt})
	}

	applied := 0
	cur := 0
	remaining := uint64(0)
	var value uint64

	forEachCell(c, func(lx, y, lz int32) {
		for remaining == 0 && cur < len(runs) {
			value = runs[cur].value
			remaining = runs[cur].count
			cur++
		}
		if remaining > 0 {
			apply(lx, y, lz, value)
			remaining--
			applied++
		}
	})

	if applied != chunkVolume || remaining != 0 || cur != len(runs) {
		return fmt.Errorf("RLE não cobre exatamente o volume do chunk")
	}
	return nil
}
