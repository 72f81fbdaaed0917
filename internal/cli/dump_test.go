package cli

import "testing"

func TestRunDumpStubsUntrackedTables(t *testing.T) {
	orig := dumpTypeDAG
	dumpTypeDAG = true
	defer func() { dumpTypeDAG = orig }()

	if err := runDump(nil, nil); err != nil {
		t.Fatalf("runDump failed: %v", err)
	}
}

func TestRunDumpYamlFormat(t *testing.T) {
	origFormat, origSymbol := dumpFormat, dumpSymbolTable
	dumpFormat = "yaml"
	dumpSymbolTable = true
	defer func() {
		dumpFormat = origFormat
		dumpSymbolTable = origSymbol
	}()

	if err := runDump(nil, nil); err != nil {
		t.Fatalf("runDump with yaml format failed: %v", err)
	}
}
