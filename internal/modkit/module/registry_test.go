package module

import "testing"

type runnerPorts struct{ Batch int }

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)

	Register("resolve", runnerPorts{Batch: 100})
	got, ok := PortsAs[runnerPorts]("resolve")
	if !ok || got.Batch != 100 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if _, ok := PortsAs[int]("resolve"); ok {
		t.Fatal("type mismatch should miss")
	}
	if _, ok := PortsAs[runnerPorts]("meta"); ok {
		t.Fatal("unknown module should miss")
	}

	Register("resolve", runnerPorts{Batch: 50})
	if got, _ := PortsAs[runnerPorts]("resolve"); got.Batch != 50 {
		t.Fatalf("re-register kept %+v", got)
	}
	Reset()
	if _, ok := PortsAs[runnerPorts]("resolve"); ok {
		t.Fatal("Reset kept ports")
	}
}
