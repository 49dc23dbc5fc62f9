package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type bufferWriteCloser struct {
	sync.Mutex
	buffer bytes.Buffer
	closed bool
}

func (b *bufferWriteCloser) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.buffer.Write(p)
}

func (b *bufferWriteCloser) Close() error {
	b.Lock()
	defer b.Unlock()
	b.closed = true
	return nil
}

func (b *bufferWriteCloser) String() string {
	b.Lock()
	defer b.Unlock()
	return b.buffer.String()
}

func TestBackendFiltersByLevel(t *testing.T) {
	backend := NewBackendWithFlags(0)
	infoWriter := &bufferWriteCloser{}
	errorWriter := &bufferWriteCloser{}
	err := backend.AddLogWriter(infoWriter, LevelInfo)
	if err != nil {
		t.Fatalf("AddLogWriter unexpectedly failed: %s", err)
	}
	err = backend.AddLogWriter(errorWriter, LevelError)
	if err != nil {
		t.Fatalf("AddLogWriter unexpectedly failed: %s", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run unexpectedly failed: %s", err)
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Tracef("trace %d", 1)
	log.Debugf("debug %d", 2)
	log.Infof("info %d", 3)
	log.Errorf("error %d", 4)
	backend.Close()

	infoOutput := infoWriter.String()
	if strings.Contains(infoOutput, "trace 1") || strings.Contains(infoOutput, "debug 2") {
		t.Fatalf("info writer got messages below its level: %q", infoOutput)
	}
	if !strings.Contains(infoOutput, "[INF] TEST: info 3") || !strings.Contains(infoOutput, "[ERR] TEST: error 4") {
		t.Fatalf("info writer is missing messages: %q", infoOutput)
	}
	errorOutput := errorWriter.String()
	if strings.Contains(errorOutput, "info 3") || !strings.Contains(errorOutput, "error 4") {
		t.Fatalf("error writer got unexpected output: %q", errorOutput)
	}
	if !infoWriter.closed || !errorWriter.closed {
		t.Fatalf("Close didn't close the writers")
	}
}

func TestAddLogWriterAfterRun(t *testing.T) {
	backend := NewBackend()
	err := backend.Run()
	if err != nil {
		t.Fatalf("Run unexpectedly failed: %s", err)
	}
	defer backend.Close()

	err = backend.AddLogWriter(&bufferWriteCloser{}, LevelInfo)
	if err == nil {
		t.Fatalf("AddLogWriter unexpectedly succeeded on a running backend")
	}
	err = backend.Run()
	if err == nil {
		t.Fatalf("Run unexpectedly succeeded twice")
	}
}

func TestParseAndSetDebugLevels(t *testing.T) {
	first := RegisterSubSystem("TST1")
	second := RegisterSubSystem("TST2")

	tests := []struct {
		debugLevel    string
		expectedFirst Level
		expectedSecnd Level
		expectedError bool
	}{
		{debugLevel: "debug", expectedFirst: LevelDebug, expectedSecnd: LevelDebug},
		{debugLevel: "TST1=trace,TST2=error", expectedFirst: LevelTrace, expectedSecnd: LevelError},
		{debugLevel: "TST1=warn", expectedFirst: LevelWarn, expectedSecnd: LevelError},
		{debugLevel: "nonsense", expectedError: true},
		{debugLevel: "NOPE=info", expectedError: true},
		{debugLevel: "TST1=loud", expectedError: true},
		{debugLevel: "TST1", expectedError: true},
	}

	for _, test := range tests {
		err := ParseAndSetDebugLevels(test.debugLevel)
		if test.expectedError {
			if err == nil {
				t.Fatalf("ParseAndSetDebugLevels(%q) unexpectedly succeeded", test.debugLevel)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAndSetDebugLevels(%q) unexpectedly failed: %s", test.debugLevel, err)
		}
		if first.Level() != test.expectedFirst || second.Level() != test.expectedSecnd {
			t.Fatalf("ParseAndSetDebugLevels(%q): got levels %s/%s, want %s/%s", test.debugLevel,
				first.Level(), second.Level(), test.expectedFirst, test.expectedSecnd)
		}
	}

	if RegisterSubSystem("TST1") != first {
		t.Fatalf("RegisterSubSystem returned a new logger for an existing subsystem")
	}
}

func TestLevelFromString(t *testing.T) {
	for _, level := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical, LevelOff} {
		parsed, ok := LevelFromString(level.String())
		if !ok || parsed != level {
			t.Fatalf("LevelFromString(%s) returned %s, %t", level, parsed, ok)
		}
	}
	if _, ok := LevelFromString("verbose"); ok {
		t.Fatalf("LevelFromString unexpectedly accepted an unknown level")
	}
}
