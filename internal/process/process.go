// Package process runs non-interactive subprocesses whose standard
// output streams into an editor buffer. One reader goroutine per
// process forwards output chunks through the message queue in order
// and posts exactly one finished notification when the stream closes.
package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/dmorey/caret/internal/engine/action"
	"github.com/dmorey/caret/internal/engine/id"
	"github.com/dmorey/caret/internal/logging"
	"github.com/dmorey/caret/internal/message"
)

// ErrEmptyCommand reports a command line with no program name.
var ErrEmptyCommand = errors.New("empty command line")

// readChunk is the read size for subprocess output. Small enough to
// show output promptly, large enough to keep message traffic sane.
const readChunk = 1024

// Process is a running subprocess bound to an output buffer.
type Process struct {
	bufferID id.Buffer
	cmd      *exec.Cmd
	done     chan struct{}
}

// BufferID returns the buffer receiving the process output.
func (p *Process) BufferID() id.Buffer {
	return p.bufferID
}

// Done is closed after the finished notification has been posted.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Start launches the command line with output directed at the given
// buffer. Spawn failures are returned to the caller; anything after a
// successful spawn is reported through the queue instead.
//
// The command line is split on whitespace. No shell is involved.
func Start(cmdline string, bufID id.Buffer, queue *message.Queue, log *logging.Logger) (*Process, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe subprocess output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %q: %w", fields[0], err)
	}

	p := &Process{
		bufferID: bufID,
		cmd:      cmd,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(p.done)

		var readErr error
		buf := make([]byte, readChunk)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				queue.Post(message.Act{Action: action.AppendToBuffer{
					Buffer: p.bufferID,
					Text:   string(buf[:n]),
				}})
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}
				break
			}
		}

		if waitErr := cmd.Wait(); waitErr != nil {
			log.Warn("subprocess %q exited with error: %v", fields[0], waitErr)
		}

		// Exactly one terminal notification, even on a read failure.
		queue.Post(message.Act{Action: action.ProcessFinished{
			Buffer: p.bufferID,
			Err:    readErr,
		}})
	}()

	return p, nil
}
