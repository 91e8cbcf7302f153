package main

import (
	"os"
	"strconv"

	"vitrolab-sim/internal/sim"
)

// writerSet bundles one writer list per row type.
type writerSet struct {
	assay    []sim.AssayWriter
	material []sim.MaterialWriter
	state    []sim.StateWriter
	event    []sim.EventWriter
}

// newWriters sets up the observation outputs based on flags and env vars.
// It returns the writer set and a cleanup function to close any resources.
func newWriters(printOnly bool, logFile string) (writerSet, func(), error) {
	cleanup := func() {}

	var ws writerSet
	if printOnly || os.Getenv("GREPTIMEDB_HOST") == "" {
		w := sim.NewJSONStdoutWriter()
		ws = writerSet{
			assay:    []sim.AssayWriter{w},
			material: []sim.MaterialWriter{w},
			state:    []sim.StateWriter{w},
			event:    []sim.EventWriter{w},
		}
	} else {
		host := os.Getenv("GREPTIMEDB_HOST")
		port := 0
		if p := os.Getenv("GREPTIMEDB_PORT"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				return writerSet{}, nil, err
			}
			port = n
		}
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := sim.NewGreptimeDBWriter(host, port, database)
		if err != nil {
			return writerSet{}, nil, err
		}
		ws = writerSet{
			assay:    []sim.AssayWriter{w},
			material: []sim.MaterialWriter{w},
			state:    []sim.StateWriter{w},
			event:    []sim.EventWriter{w},
		}
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".materials", logFile+".state", logFile+".events")
		if err != nil {
			return writerSet{}, nil, err
		}
		ws.assay = append(ws.assay, fw)
		ws.material = append(ws.material, fw)
		ws.state = append(ws.state, fw)
		ws.event = append(ws.event, fw)
		cleanup = func() { fw.Close() }
	}
	return ws, cleanup, nil
}
