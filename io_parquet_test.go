package polars

import (
	"bytes"
	"errors"
	"testing"
)

func parquetRoundTrip(t *testing.T, df *DataFrame, readOpts ...ParquetReadOptions) *DataFrame {
	t.Helper()
	var buf bytes.Buffer
	if err := df.WriteParquetToWriter(&buf); err != nil {
		t.Fatalf("WriteParquetToWriter failed: %v", err)
	}
	got, err := ReadParquetFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), readOpts...)
	if err != nil {
		t.Fatalf("ReadParquetFromReader failed: %v", err)
	}
	return got
}

func TestParquetRoundTrip(t *testing.T) {
	a := NewSeriesInt64("a", []int64{1, 2, 3})
	b := NewSeriesFloat64("b", []float64{1.5, 2.5, 3.5})
	c := NewSeriesString("c", []string{"x", "y", "z"})
	d := NewSeriesBool("d", []bool{true, false, true})
	df, err := NewDataFrame(a, b, c, d)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}

	got := parquetRoundTrip(t, df)
	if got.Height() != 3 || got.Width() != 4 {
		t.Fatalf("shape = %dx%d, want 3x4", got.Height(), got.Width())
	}

	ca, _ := got.Column("a")
	if ca.DType() != Int64 || ca.Get(2) != int64(3) {
		t.Errorf("a = %v (%v), want 3 (Int64)", ca.Get(2), ca.DType())
	}
	cb, _ := got.Column("b")
	if cb.DType() != Float64 || cb.Get(0) != 1.5 {
		t.Errorf("b = %v (%v), want 1.5 (Float64)", cb.Get(0), cb.DType())
	}
	cc, _ := got.Column("c")
	if cc.Get(1) != "y" {
		t.Errorf("c row 1 = %v, want y", cc.Get(1))
	}
	cd, _ := got.Column("d")
	if cd.DType() != Bool || cd.Get(1) != false {
		t.Errorf("d row 1 = %v (%v), want false (Bool)", cd.Get(1), cd.DType())
	}
}

func TestParquetRoundTripNulls(t *testing.T) {
	a := NewSeriesInt64WithNulls("a", []int64{1, 0, 3}, []bool{true, false, true})
	df, err := NewDataFrame(a)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}

	got := parquetRoundTrip(t, df)
	ca, _ := got.Column("a")
	if ca.Get(0) != int64(1) || ca.Get(2) != int64(3) {
		t.Errorf("a = %v _ %v, want 1 _ 3", ca.Get(0), ca.Get(2))
	}
	if !ca.IsNull(1) {
		t.Error("row 1 should survive the round trip as null")
	}
}

func TestParquetColumnSubset(t *testing.T) {
	a := NewSeriesInt64("a", []int64{1, 2})
	b := NewSeriesInt64("b", []int64{3, 4})
	df, err := NewDataFrame(a, b)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}

	got := parquetRoundTrip(t, df, ParquetReadOptions{Columns: []string{"b"}})
	if got.Width() != 1 {
		t.Fatalf("Width() = %d, want 1", got.Width())
	}
	cb, _ := got.Column("b")
	if cb.Get(0) != int64(3) {
		t.Errorf("b row 0 = %v, want 3", cb.Get(0))
	}
}

func TestParquetMaxRows(t *testing.T) {
	a := NewSeriesInt64("a", []int64{1, 2, 3, 4, 5})
	df, err := NewDataFrame(a)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}

	got := parquetRoundTrip(t, df, ParquetReadOptions{MaxRows: 2})
	if got.Height() != 2 {
		t.Errorf("Height() = %d, want 2", got.Height())
	}
}

func TestParquetMissingColumn(t *testing.T) {
	a := NewSeriesInt64("a", []int64{1})
	df, err := NewDataFrame(a)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}
	var buf bytes.Buffer
	if err := df.WriteParquetToWriter(&buf); err != nil {
		t.Fatalf("WriteParquetToWriter failed: %v", err)
	}
	_, err = ReadParquetFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		ParquetReadOptions{Columns: []string{"nope"}})
	if !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("error = %v, want ErrInvalidLayout", err)
	}
}

func TestParquetListColumnRejected(t *testing.T) {
	l := NewListSeriesFromSlicesI64("l", [][]int64{{1}})
	df, err := NewDataFrame(l.AsSeries())
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}
	var buf bytes.Buffer
	if err := df.WriteParquetToWriter(&buf); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error = %v, want ErrTypeMismatch for list columns", err)
	}
}

func TestParquetCompressionOptions(t *testing.T) {
	a := NewSeriesInt64("a", []int64{1, 2, 3})
	df, err := NewDataFrame(a)
	if err != nil {
		t.Fatalf("NewDataFrame failed: %v", err)
	}
	for _, comp := range []string{"none", "gzip", "zstd"} {
		var buf bytes.Buffer
		if err := df.WriteParquetToWriter(&buf, ParquetWriteOptions{Compression: comp}); err != nil {
			t.Fatalf("write with %s failed: %v", comp, err)
		}
		got, err := ReadParquetFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		if err != nil {
			t.Fatalf("read with %s failed: %v", comp, err)
		}
		ca, _ := got.Column("a")
		if ca.Get(2) != int64(3) {
			t.Errorf("%s: row 2 = %v, want 3", comp, ca.Get(2))
		}
	}
}
