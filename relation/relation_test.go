package relation

import (
	"io"
	"path/filepath"
	"testing"
)

func TestInsertFetchScan(t *testing.T) {
	rel, err := Create(filepath.Join(t.TempDir(), "relA"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer rel.Close()

	const n = 500
	var ids []struct{ i int32 }
	for i := int32(0); i < n; i++ {
		var rec Record
		rec.I = i
		rec.D = float64(i)
		copy(rec.S[:], []byte("string record"))
		if _, err := rel.Insert(rec); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
		ids = append(ids, struct{ i int32 }{i})
	}

	sc := NewScanner(rel)
	count := 0
	for {
		_, buf, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rec := Decode(buf)
		if rec.I != int32(count) {
			t.Fatalf("record %d has I=%d", count, rec.I)
		}
		count++
	}
	if count != n {
		t.Fatalf("scanned %d records, want %d", count, n)
	}
}
