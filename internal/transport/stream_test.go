package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

func pipe(t *testing.T) (Conn, Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return NewStreamConn(a, "a"), NewStreamConn(b, "b")
}

func TestStreamConn_RoundTrip(t *testing.T) {
	tests := map[string]struct {
		frames [][]byte
	}{
		"single":   {frames: [][]byte{[]byte("hello")}},
		"empty":    {frames: [][]byte{{}}},
		"multiple": {frames: [][]byte{[]byte("one"), {}, bytes.Repeat([]byte{7}, 70000)}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client, server := pipe(t)

			errCh := make(chan error, 1)
			go func() {
				for _, f := range tt.frames {
					if err := client.WriteFrame(f); err != nil {
						errCh <- err
						return
					}
				}
				errCh <- nil
			}()

			for i, exp := range tt.frames {
				got, err := server.ReadFrame()
				if err != nil {
					t.Fatalf("frame %d: unexpected error: %v", i, err)
				}
				testutil.AssertEqual(t, "frame", bytes.Equal(got, exp), true)
			}
			if err := <-errCh; err != nil {
				t.Fatalf("unexpected write error: %v", err)
			}
		})
	}
}

func TestStreamConn_CleanClose(t *testing.T) {
	a, b := net.Pipe()
	server := NewStreamConn(b, "b")
	a.Close()

	_, err := server.ReadFrame()
	if !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, expected %v", err, io.EOF)
	}
}

func TestStreamConn_CloseMidFrame(t *testing.T) {
	tests := map[string]struct {
		raw []byte
	}{
		"partial header": {raw: []byte{0, 0}},
		"partial body":   {raw: []byte{0, 0, 0, 10, 1, 2, 3}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, b := net.Pipe()
			defer b.Close()
			server := NewStreamConn(b, "b")

			go func() {
				a.Write(tt.raw)
				a.Close()
			}()

			_, err := server.ReadFrame()
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("error = %v, expected %v", err, io.ErrUnexpectedEOF)
			}
		})
	}
}

func TestStreamConn_FrameTooLarge(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	server := NewStreamConn(b, "b")

	go func() {
		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)
		a.Write(hdr[:])
	}()

	_, err := server.ReadFrame()
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("error = %v, expected %v", err, ErrFrameTooLarge)
	}

	err = server.WriteFrame(make([]byte, MaxFrameSize+1))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("error = %v, expected %v", err, ErrFrameTooLarge)
	}
}

func TestStreamConn_ConcurrentWriters(t *testing.T) {
	client, server := pipe(t)

	const writers = 4
	const perWriter = 25

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := bytes.Repeat([]byte{byte(w + 1)}, 100+w)
			for range perWriter {
				if err := client.WriteFrame(payload); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}

	counts := make(map[byte]int)
	for range writers * perWriter {
		f, err := server.ReadFrame()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w := f[0]
		testutil.AssertEqual(t, "length", len(f), 100+int(w)-1)
		testutil.AssertEqual(t, "uniform", bytes.Count(f, []byte{w}), len(f))
		counts[w]++
	}
	wg.Wait()

	for w := range writers {
		testutil.AssertEqual(t, "frames from writer", counts[byte(w+1)], perWriter)
	}
}

func TestStreamConn_RemoteAddr(t *testing.T) {
	client, _ := pipe(t)
	testutil.AssertEqual(t, "remote", client.RemoteAddr(), "a")
}
