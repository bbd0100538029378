package walk

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestSinkWriteHeaderBypassesCompressor(t *testing.T) {
	var buf bytes.Buffer
	sk, err := newSink(&buf, FormatZstd)
	if err != nil {
		t.Fatal(err)
	}
	if err := sk.writeHeader([]byte(Header)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != Header {
		t.Fatalf("header bytes = %q, want raw %q (must bypass the compressor)", buf.String(), Header)
	}
}

func TestSinkFlushRawPassthrough(t *testing.T) {
	var buf bytes.Buffer
	sk, err := newSink(&buf, FormatNone)
	if err != nil {
		t.Fatal(err)
	}
	c := newCell()
	c.append([]byte("a,b,c\n"))
	if err := sk.flush(c); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a,b,c\n" {
		t.Fatalf("flushed bytes = %q", buf.String())
	}
	if c.len() != 0 {
		t.Fatal("flush must reset the cell")
	}
}

func TestSinkFlushNoopOnEmptyCell(t *testing.T) {
	var buf bytes.Buffer
	sk, err := newSink(&buf, FormatNone)
	if err != nil {
		t.Fatal(err)
	}
	if err := sk.flush(newCell()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written for an empty cell, got %d", buf.Len())
	}
}

func TestSinkZstdRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sk, err := newSink(&buf, FormatZstd)
	if err != nil {
		t.Fatal(err)
	}
	if err := sk.writeHeader([]byte(Header)); err != nil {
		t.Fatal(err)
	}
	c := newCell()
	c.append([]byte("1,0,-1,\"t\",\"\",0,0,0,0,0,0,\"40755\",0,0,0,0,0\n"))
	if err := sk.flush(c); err != nil {
		t.Fatal(err)
	}
	if err := sk.finalize(); err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte(Header)) {
		t.Fatalf("output must start with the raw header byte-for-byte")
	}
	frame := out[len(Header):]

	dec, err := zstd.NewReader(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("decompressed frame must be a valid zstd stream: %v", err)
	}
	defer dec.Close()
	decoded, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decoding zstd frame: %v", err)
	}
	want := "1,0,-1,\"t\",\"\",0,0,0,0,0,0,\"40755\",0,0,0,0,0\n"
	if string(decoded) != want {
		t.Fatalf("decoded = %q, want %q", decoded, want)
	}
}

func TestSinkGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sk, err := newSink(&buf, FormatGzip)
	if err != nil {
		t.Fatal(err)
	}
	c := newCell()
	c.append([]byte("record\n"))
	if err := sk.flush(c); err != nil {
		t.Fatal(err)
	}
	if err := sk.finalize(); err != nil {
		t.Fatal(err)
	}

	r, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("pgzip output must be a standard gzip stream: %v", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "record\n" {
		t.Fatalf("decoded = %q", decoded)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestSinkRecordsFirstWriteError(t *testing.T) {
	sk, err := newSink(failingWriter{}, FormatNone)
	if err != nil {
		t.Fatal(err)
	}
	c := newCell()
	c.append([]byte("x\n"))
	if err := sk.flush(c); err == nil {
		t.Fatal("expected flush to return the underlying write error")
	}
	if err := sk.finalize(); err == nil {
		t.Fatal("expected finalize to surface the recorded error")
	}
}
