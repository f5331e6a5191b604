// Copyright 2020, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"compress/flate"
	"io"

	ksflate "github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/parososi/pp"
)

func init() {
	registerEncoder(FormatPP, "pp", func(input []byte, level int) ([]byte, error) {
		return pp.Compress(input, &pp.WriterConfig{Level: level})
	})
	registerDecoder(FormatPP, "pp", func(input []byte) ([]byte, error) {
		return pp.Decompress(input, nil)
	})

	registerEncoder(FormatFlate, "std", func(input []byte, level int) ([]byte, error) {
		bb := new(bytes.Buffer)
		zw, err := flate.NewWriter(bb, level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(input); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return bb.Bytes(), nil
	})
	registerDecoder(FormatFlate, "std", func(input []byte) ([]byte, error) {
		return io.ReadAll(flate.NewReader(bytes.NewReader(input)))
	})

	registerEncoder(FormatFlate, "ks", func(input []byte, level int) ([]byte, error) {
		bb := new(bytes.Buffer)
		zw, err := ksflate.NewWriter(bb, level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(input); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return bb.Bytes(), nil
	})
	registerDecoder(FormatFlate, "ks", func(input []byte) ([]byte, error) {
		return io.ReadAll(ksflate.NewReader(bytes.NewReader(input)))
	})

	registerEncoder(FormatZstd, "ks", func(input []byte, level int) ([]byte, error) {
		zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, err
		}
		out := zw.EncodeAll(input, nil)
		return out, zw.Close()
	})
	registerDecoder(FormatZstd, "ks", func(input []byte) ([]byte, error) {
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return zr.DecodeAll(input, nil)
	})

	registerEncoder(FormatXZ, "xz", func(input []byte, level int) ([]byte, error) {
		bb := new(bytes.Buffer)
		zw, err := xz.NewWriter(bb)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(input); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return bb.Bytes(), nil
	})
	registerDecoder(FormatXZ, "xz", func(input []byte) ([]byte, error) {
		zr, err := xz.NewReader(bytes.NewReader(input))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(zr)
	})
}
