// Package compress provides the compression codecs used by compressed factor files.
//
// A factor file is compressed in one of two ways: the whole FACG image is wrapped
// in a compression frame, or a FACT image keeps its header in the clear and only
// its data segment is a frame. Both are decoded by the buffered reader through
// the same streaming interface; the memory-mapped reader refuses them.
//
// # Supported Algorithms
//
//   - None: pass-through, used for uncompressed files
//   - Gzip: the format produced by gzip-wrapping writers (klauspost/compress/gzip)
//   - Zstd: best ratio (klauspost/compress/zstd, or libzstd via gozstd with the gozstd build tag)
//   - S2: fast, also reads snappy framed streams (klauspost/compress/s2)
//   - LZ4: fastest decompression, LZ4 frame format (pierrec/lz4)
//
// # Architecture
//
// Every codec produces self-describing frames, so the algorithm can be recovered
// from the first bytes of a file:
//
//	prefix := make([]byte, compress.SniffLen)
//	n, _ := io.ReadFull(f, prefix)
//	if typ, ok := compress.Detect(prefix[:n]); ok {
//	    codec, _ := compress.GetCodec(typ)
//	    rc, err := codec.NewReader(io.MultiReader(bytes.NewReader(prefix[:n]), f))
//	    ...
//	}
//
// Codecs hold no per-call state; decoders and encoders are pooled internally, so a
// single codec value is safe for concurrent use. Readers returned by NewReader must
// be closed to return their decoder to the pool.
//
// # Error Handling
//
// Decompression errors wrap the underlying library error with the algorithm name.
// Unknown compression types wrap errs.ErrUnknownCompression.
package compress
