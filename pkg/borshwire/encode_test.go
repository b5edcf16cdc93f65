package borshwire

import (
	"bytes"
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func TestMarshalScalars(t *testing.T) {
	type scalars struct {
		A uint8
		B uint16
		C int32
		D uint64
		E bool
		F float32
	}
	in := scalars{A: 1, B: 0x0203, C: -2, D: 0x0807060504030201, E: true, F: 1.5}
	out, err := Marshal(in)
	require.NoError(t, err)

	want := []byte{
		1,
		0x03, 0x02,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		1,
		0x00, 0x00, 0xC0, 0x3F,
	}
	require.Equal(t, want, out)
}

func TestMarshalString(t *testing.T) {
	out, err := Marshal("go")
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 0, 0, 'g', 'o'}, out)
}

func TestEncodeChunkSequence(t *testing.T) {
	type rec struct {
		ID   uint32
		Name string
		Note string
	}
	var enc Encoder
	var chunks [][]byte
	err := enc.Encode(rec{ID: 9, Name: "ada"}, func(c []byte) {
		chunks = append(chunks, append([]byte(nil), c...))
	})
	require.NoError(t, err)

	require.Len(t, chunks, 5)
	require.Equal(t, []byte{9, 0, 0, 0}, chunks[0])
	require.Equal(t, []byte{3, 0, 0, 0}, chunks[1])
	require.Equal(t, []byte("ada"), chunks[2])
	require.Equal(t, []byte{0, 0, 0, 0}, chunks[3])
	require.Empty(t, chunks[4]) // empty strings still send their payload chunk
}

func TestEncodeVecAndMap(t *testing.T) {
	var enc Encoder
	var chunks [][]byte
	sink := func(c []byte) { chunks = append(chunks, append([]byte(nil), c...)) }

	require.NoError(t, enc.Encode([]uint16{3, 4}, sink))
	require.Equal(t, [][]byte{{2, 0, 0, 0}, {3, 0}, {4, 0}}, chunks)

	chunks = nil
	require.NoError(t, enc.Encode(map[string]uint8{"b": 2, "a": 1}, sink))
	require.Equal(t, [][]byte{
		{2, 0, 0, 0},
		{1, 0, 0, 0}, []byte("a"), {1},
		{1, 0, 0, 0}, []byte("b"), {2},
	}, chunks)
}

func TestEncodeByteRuns(t *testing.T) {
	var enc Encoder
	var chunks [][]byte
	sink := func(c []byte) { chunks = append(chunks, append([]byte(nil), c...)) }

	require.NoError(t, enc.Encode([]byte{9, 8, 7}, sink))
	require.Equal(t, [][]byte{{3, 0, 0, 0}, {9, 8, 7}}, chunks)

	chunks = nil
	require.NoError(t, enc.Encode([4]byte{1, 2, 3, 4}, sink))
	require.Equal(t, [][]byte{{1, 2, 3, 4}}, chunks) // fixed runs carry no length prefix
}

func TestEncodeOptionPointer(t *testing.T) {
	type opt struct {
		V *uint16
	}
	var enc Encoder
	var chunks [][]byte
	sink := func(c []byte) { chunks = append(chunks, append([]byte(nil), c...)) }

	require.NoError(t, enc.Encode(opt{}, sink))
	require.Equal(t, [][]byte{{0}}, chunks)

	chunks = nil
	v := uint16(7)
	require.NoError(t, enc.Encode(opt{V: &v}, sink))
	require.Equal(t, [][]byte{{1}, {7, 0}}, chunks)
}

func TestEncodeUnsafeStrings(t *testing.T) {
	enc := Encoder{Opts: Options{UnsafeStrings: true}}
	var chunks [][]byte
	err := enc.Encode("hi", func(c []byte) {
		chunks = append(chunks, append([]byte(nil), c...))
	})
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), chunks[1])
}

func TestEncodeNaN(t *testing.T) {
	_, err := Marshal(math.NaN())
	require.ErrorIs(t, err, ErrNaN)

	type pair struct {
		A float32
		B bool
	}
	_, err = Marshal(pair{A: float32(math.NaN())})
	require.ErrorIs(t, err, ErrNaN)
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Marshal(make(chan int))
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = Marshal(nil)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = Marshal(map[float64]bool{1: true})
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeSkipsUnexported(t *testing.T) {
	type mixed struct {
		A      uint8
		hidden string
		B      uint8
	}
	out, err := Marshal(mixed{A: 1, hidden: "x", B: 2})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, out)
}

func TestMarshalMatchesChunks(t *testing.T) {
	type row struct {
		ID    uint32
		Name  string
		Score float64
		Tags  []uint8
	}
	condition := func(id uint32, name string, score float64, tags []uint8) bool {
		in := row{ID: id, Name: name, Score: score, Tags: tags}
		whole, err := Marshal(in)
		if err != nil {
			return false
		}
		var enc Encoder
		var joined []byte
		if err := enc.Encode(in, func(c []byte) { joined = append(joined, c...) }); err != nil {
			return false
		}
		return bytes.Equal(whole, joined)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func BenchmarkEncode(b *testing.B) {
	type row struct {
		ID    uint64
		Name  string
		Score float64
		Flag  bool
	}
	in := row{ID: 42, Name: "benchmark", Score: 3.25, Flag: true}
	var enc Encoder
	sink := func([]byte) {}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := enc.Encode(in, sink); err != nil {
			b.Fatal(err)
		}
	}
}
