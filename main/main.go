package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	dynstruct "github.com/mfrager/dynamic-struct"
	"github.com/mfrager/dynamic-struct/pkg/borshwire"
	"github.com/mfrager/dynamic-struct/pkg/chunklog"
)

func main() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	f, err := os.Create("mem.prof")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	type Reading struct {
		Sensor string
		Value  float64
		Stamp  uint64
		Flags  [2]byte
		OK     bool
	}

	decl, defs, err := borshwire.SchemaOf(Reading{})
	if err != nil {
		log.Fatal(err)
	}
	ts := dynstruct.GetSchema(decl, defs)

	out, err := dynstruct.RenderJSON(ts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))

	w := dynstruct.NewWalker(ts)
	for i := 0; w.Next(); i++ {
		fmt.Printf("%2d %-8s %s\n", i, w.Node().Kind, w.Node().Name)
	}

	sample := Reading{Sensor: "intake", Value: 21.75, Stamp: 1724400000, Flags: [2]byte{1, 2}, OK: true}

	var buf bytes.Buffer
	lw := chunklog.NewWriter(&buf, chunklog.Options{Zstd: true})
	attr := dynstruct.NewAttributor(ts)
	var enc borshwire.Encoder
	err = enc.Encode(sample, func(chunk []byte) {
		att := attr.Attribute(chunk)
		fmt.Printf("%-18s part %d/%d  % x\n", att.Path, att.Part+1, att.Parts, chunk)
		if err := lw.Record(att, chunk); err != nil {
			log.Fatal(err)
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := lw.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("log: %d bytes\n", buf.Len())

	for i := 0; i < 10000; i++ {
		ts := dynstruct.GetSchema(decl, defs)
		a := dynstruct.NewAttributor(ts)
		enc.Encode(sample, func(chunk []byte) { a.Attribute(chunk) })
	}
	pprof.WriteHeapProfile(f)
	time.Sleep(5 * time.Minute)
}
