//go:build !windows

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffx64/discord-presence-go/models"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

const readyReply = `{"cmd":"DISPATCH","data":{"v":1,"user":{"id":"1","username":"wumpus"}},"evt":"READY"}`

// fakeDiscord serves the IPC protocol on discord-ipc-0 in a fresh
// XDG_RUNTIME_DIR. Commands are echoed back with their nonce.
type fakeDiscord struct {
	mu       sync.Mutex
	commands []models.RawPayload
}

func serveFakeDiscord(t *testing.T) *fakeDiscord {
	t.Helper()
	dir, err := os.MkdirTemp("", "dp")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("DISCORD_PRESENCE_LOCK_FILE", filepath.Join(dir, "presence.lock"))

	ln, err := net.Listen("unix", filepath.Join(dir, "discord-ipc-0"))
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	d := &fakeDiscord{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go d.serve(conn)
		}
	}()
	return d
}

func (d *fakeDiscord) serve(conn net.Conn) {
	defer conn.Close()
	for {
		hdr := make([]byte, ipc.HeaderSize)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		h, err := ipc.DecodeHeader(hdr)
		if err != nil {
			return
		}
		body := make([]byte, h.Length)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}

		var reply ipc.Frame
		switch h.OpCode {
		case ipc.OpHandshake:
			reply = ipc.Frame{OpCode: ipc.OpFrame, Payload: readyReply}
		case ipc.OpPing:
			reply = ipc.Frame{OpCode: ipc.OpPong, Payload: string(body)}
		case ipc.OpFrame:
			p, err := models.DecodePayload[json.RawMessage](string(body))
			if err != nil {
				return
			}
			d.mu.Lock()
			d.commands = append(d.commands, *p)
			d.mu.Unlock()
			b, _ := json.Marshal(models.RawPayload{Cmd: p.Cmd, Data: p.Args, Nonce: p.Nonce})
			reply = ipc.Frame{OpCode: ipc.OpFrame, Payload: string(b)}
		default:
			continue
		}
		b, err := ipc.EncodeFrame(reply)
		if err != nil {
			return
		}
		if _, err := conn.Write(b); err != nil {
			return
		}
	}
}

func (d *fakeDiscord) activities() []models.SetActivityArgs {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.SetActivityArgs
	for _, p := range d.commands {
		if p.Cmd != models.CommandSetActivity || p.Args == nil {
			continue
		}
		var args models.SetActivityArgs
		if json.Unmarshal(*p.Args, &args) == nil {
			out = append(out, args)
		}
	}
	return out
}

func TestPingCommand(t *testing.T) {
	serveFakeDiscord(t)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"ping", "--client-id", "42", "--log-level", "error"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "connected as wumpus")
	assert.Contains(t, out.String(), "ping answered with PONG")
}

func TestRunCommandSetsAndClearsActivity(t *testing.T) {
	d := serveFakeDiscord(t)
	t.Setenv("DISCORD_PRESENCE_POLL_INTERVAL", "10ms")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"run", "--client-id", "42", "--log-level", "error", "--state", "Editing", "--show-time=false"})
	errc := make(chan error, 1)
	go func() { errc <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool { return len(d.activities()) >= 1 }, 10*time.Second, 5*time.Millisecond)
	first := d.activities()[0]
	require.NotNil(t, first.Activity)
	assert.Equal(t, "Editing", first.Activity.State)
	assert.Nil(t, first.Activity.Timestamps)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}

	all := d.activities()
	assert.Nil(t, all[len(all)-1].Activity, "activity is cleared on exit")
}
