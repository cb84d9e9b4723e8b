package sequencer_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicalpulse/dashboard/internal/sequencer"
)

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// gate blocks every sleep until released, so a run can be held mid-reveal.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) sleep(ctx context.Context, _ time.Duration) error {
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.release:
		return nil
	}
}

func TestRun_NetworkScan(t *testing.T) {
	var mirror bytes.Buffer
	seq := sequencer.New(10*time.Millisecond, sequencer.WithSleep(noSleep), sequencer.WithMirror(&mirror))

	var results []sequencer.Result
	res, err := seq.Run(context.Background(), sequencer.Invocation{Tool: "nmap", Command: "nmap -sV example.com"}, func(r sequencer.Result) {
		results = append(results, r)
	})
	require.NoError(t, err)

	expected := "Exécution de: nmap -sV example.com\n\n" +
		"Starting Nmap 7.94 ( https://nmap.org )\n" +
		"Scanning targets...\n" +
		"Scanning 1 host [1000 ports]\n" +
		"Discovered open port 80/tcp on 192.168.1.1\n" +
		"Discovered open port 443/tcp on 192.168.1.1\n" +
		"Discovered open port 22/tcp on 192.168.1.1\n" +
		"\nPort scanning completed. Found 3 open ports.\n"
	assert.Equal(t, expected, seq.Transcript())
	assert.Equal(t, expected, mirror.String())
	assert.True(t, strings.HasSuffix(seq.Transcript(), "Port scanning completed. Found 3 open ports.\n"))

	require.Len(t, results, 1)
	assert.Equal(t, res, results[0])
	assert.Equal(t, "nmap -sV example.com", res.Command)
	assert.Equal(t, "Port scanning completed. Found 3 open ports.", res.Output)
	assert.Equal(t, sequencer.KindNetworkScan, res.Kind)
	assert.False(t, res.Cancelled)
	assert.False(t, seq.Busy())
}

func TestRun_SQLInjection(t *testing.T) {
	seq := sequencer.New(0, sequencer.WithSleep(noSleep))
	command := `sqlmap -u "http://example.com/page.php?id=1" --dbs`

	var output string
	_, err := seq.Run(context.Background(), sequencer.Invocation{Command: command}, func(r sequencer.Result) {
		output = r.Output
	})
	require.NoError(t, err)
	assert.Equal(t, "Database extraction complete. Found 3 databases.", output)
	assert.True(t, strings.HasPrefix(seq.Transcript(), "Exécution de: "+command+"\n\n"))
}

// TestRun_CommandTextSelectsNarrative ensures an edited command plays its own narrative whatever terminal it runs in
func TestRun_CommandTextSelectsNarrative(t *testing.T) {
	testCases := []struct {
		name     string
		inv      sequencer.Invocation
		expected string
	}{
		{
			name:     "sqlmap command in an nmap terminal",
			inv:      sequencer.Invocation{Tool: "nmap", Command: `sqlmap -u "http://example.com/page.php?id=1" --dbs`},
			expected: "Database extraction complete. Found 3 databases.",
		},
		{
			name:     "nmap command in a sqlmap terminal",
			inv:      sequencer.Invocation{Tool: "sqlmap", Command: "nmap -sV example.com"},
			expected: "Port scanning completed. Found 3 open ports.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seq := sequencer.New(0, sequencer.WithSleep(noSleep))
			res, err := seq.Run(context.Background(), tc.inv, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Output)
			assert.Equal(t, tc.inv.Command, res.Command)
		})
	}
}

// TestRun_ClearsPreviousTranscript ensures every invocation starts from an empty buffer
func TestRun_ClearsPreviousTranscript(t *testing.T) {
	seq := sequencer.New(0, sequencer.WithSleep(noSleep))
	_, err := seq.Run(context.Background(), sequencer.Invocation{Command: "nmap -F example.com"}, nil)
	require.NoError(t, err)
	_, err = seq.Run(context.Background(), sequencer.Invocation{Command: "whoami"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Exécution de: whoami\n\nExécution de la commande...\nTraitement en cours...\n\nCommande exécutée avec succès.\n", seq.Transcript())
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name     string
		inv      sequencer.Invocation
		expected sequencer.Kind
	}{
		{"command wins over sqlmap tool", sequencer.Invocation{Tool: "sqlmap", Command: "nmap -sV host"}, sequencer.KindNetworkScan},
		{"command wins over nmap tool", sequencer.Invocation{Tool: "nmap", Command: `sqlmap -u "http://example.com/page.php?id=1" --dbs`}, sequencer.KindSQLInjection},
		{"tool used for unrecognised command", sequencer.Invocation{Tool: "sqlmap", Command: "./run.sh --dbs"}, sequencer.KindSQLInjection},
		{"owaspzap tool", sequencer.Invocation{Tool: "owaspzap", Command: "python zap.py"}, sequencer.KindWebProxyScan},
		{"unknown tool falls back to command", sequencer.Invocation{Tool: "nikto", Command: "nmap -O host"}, sequencer.KindNetworkScan},
		{"nmap before sqlmap", sequencer.Invocation{Command: "nmap && sqlmap"}, sequencer.KindNetworkScan},
		{"sqlmap before zap", sequencer.Invocation{Command: "sqlmap --zap"}, sequencer.KindSQLInjection},
		{"owasp", sequencer.Invocation{Command: "owasp-cli scan"}, sequencer.KindWebProxyScan},
		{"zap", sequencer.Invocation{Command: "python zap.py -t http://x -m scan"}, sequencer.KindWebProxyScan},
		{"generic", sequencer.Invocation{Command: "nikto --help"}, sequencer.KindGeneric},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sequencer.KindOf(tc.inv))
		})
	}
}

func TestRun_RejectsEmptyCommand(t *testing.T) {
	seq := sequencer.New(0, sequencer.WithSleep(noSleep))
	called := false
	_, err := seq.Run(context.Background(), sequencer.Invocation{Command: "   "}, func(sequencer.Result) { called = true })
	assert.ErrorIs(t, err, sequencer.ErrEmptyCommand)
	assert.False(t, called)
}

// TestStart_RejectsWhileBusy ensures a second run cannot interleave with the first
func TestStart_RejectsWhileBusy(t *testing.T) {
	g := newGate()
	seq := sequencer.New(time.Millisecond, sequencer.WithSleep(g.sleep))

	done := make(chan sequencer.Result, 2)
	onDone := func(r sequencer.Result) { done <- r }
	require.NoError(t, seq.Start(context.Background(), sequencer.Invocation{Command: "nmap -sV example.com"}, onDone))
	<-g.started

	assert.True(t, seq.Busy())
	err := seq.Start(context.Background(), sequencer.Invocation{Command: "sqlmap --dbs"}, onDone)
	assert.ErrorIs(t, err, sequencer.ErrBusy)
	_, err = seq.Run(context.Background(), sequencer.Invocation{Command: "sqlmap --dbs"}, onDone)
	assert.ErrorIs(t, err, sequencer.ErrBusy)

	close(g.release)
	res := <-done
	assert.Equal(t, "Port scanning completed. Found 3 open ports.", res.Output)
	assert.Empty(t, done, "the callback runs once per accepted invocation")
	assert.Eventually(t, func() bool { return !seq.Busy() }, time.Second, time.Millisecond)
}

// TestClear_StopsInFlightRun ensures no rune lands after the transcript is cleared
func TestClear_StopsInFlightRun(t *testing.T) {
	g := newGate()
	seq := sequencer.New(time.Millisecond, sequencer.WithSleep(g.sleep))

	done := make(chan sequencer.Result, 1)
	require.NoError(t, seq.Start(context.Background(), sequencer.Invocation{Command: "nmap -sV example.com"}, func(r sequencer.Result) {
		done <- r
	}))
	<-g.started
	assert.Equal(t, "E", seq.Transcript())

	seq.Clear()
	cancelled := <-done
	assert.True(t, cancelled.Cancelled)
	assert.Empty(t, cancelled.Output)
	assert.Empty(t, seq.Transcript())
	assert.Eventually(t, func() bool { return !seq.Busy() }, time.Second, time.Millisecond)

	close(g.release)
	res, err := seq.Run(context.Background(), sequencer.Invocation{Command: "whoami"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Commande exécutée avec succès.", res.Output)
}

func TestRun_ContextCancellation(t *testing.T) {
	g := newGate()
	seq := sequencer.New(time.Millisecond, sequencer.WithSleep(g.sleep))
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-g.started
		cancel()
	}()
	res, err := seq.Run(ctx, sequencer.Invocation{Command: "nmap -sV example.com"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "E", seq.Transcript())
	assert.False(t, seq.Busy())
}
