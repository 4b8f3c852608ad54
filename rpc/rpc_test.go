package rpc

import (
	"errors"
	"fmt"
	"net/rpc"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type Echo struct{}

func (Echo) Upper(message string, reply *string) error {
	if message == "" {
		return errors.New("nothing to echo")
	}
	*reply = fmt.Sprintf("<%s>", message)
	return nil
}

func (Echo) Wait(d time.Duration, reply *bool) error {
	time.Sleep(d)
	*reply = true
	return nil
}

func TestCallTimeout(t *testing.T) {
	for _, transport := range []Transport{TCP, HTTP} {
		t.Run(transport.String(), func(t *testing.T) {
			server := NewServer(transport, Echo{}, "127.0.0.1:0", "EchoServer")
			if err := server.Run(); err != nil {
				t.Fatal(err)
			}
			defer server.Stop()

			client := NewClient(transport, server.Address(), "EchoClient")
			if err := client.Connect(); err != nil {
				t.Fatal(err)
			}
			defer client.Disconnect()

			var done bool
			client.SetTimeout("Echo.Wait", 50*time.Millisecond)
			start := time.Now()
			if err := client.Call("Echo.Wait", 2*time.Second, &done); err == nil {
				t.Error("slow call finished inside its timeout")
			}
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("timed out call took %s", elapsed)
			}

			// other methods are not bounded by the Echo.Wait timeout
			var reply string
			if err := client.Call("Echo.Upper", "hi", &reply); err != nil || reply != "<hi>" {
				t.Errorf("got %q, %v", reply, err)
			}

			client.SetTimeout("Echo.Wait", time.Second)
			if err := client.Call("Echo.Wait", time.Millisecond, &done); err != nil || !done {
				t.Errorf("fast call: got %v, %v", done, err)
			}
		})
	}
}

func TestCallCounts(t *testing.T) {
	server := NewServer(TCP, Echo{}, "127.0.0.1:0", "EchoServer")
	if err := server.Run(); err != nil {
		t.Fatal(err)
	}
	defer server.Stop()

	client := NewTcpClient(server.Address(), "EchoClient")
	if err := client.Connect(); err != nil {
		t.Fatal(err)
	}

	var reply string
	client.Call("Echo.Upper", "a", &reply)
	client.Call("Echo.Upper", "", &reply)
	var done bool
	client.Call("Echo.Wait", time.Duration(0), &done)

	want := map[string]uint64{"Echo.Upper": 2, "Echo.Wait": 1}
	if d := cmp.Diff(want, client.Calls()); d != "" {
		t.Errorf("call counts mismatch (-want +got):\n%s", d)
	}
	if got, want := client.callSummary(), "Echo.Upper: 2, Echo.Wait: 1"; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, transport := range []Transport{TCP, HTTP} {
		t.Run(transport.String(), func(t *testing.T) {
			server := NewServer(transport, Echo{}, "127.0.0.1:0", "EchoServer")
			if err := server.Run(); err != nil {
				t.Fatal(err)
			}

			client := NewClient(transport, server.Address(), "EchoClient")
			if err := client.Connect(); err != nil {
				t.Fatal(err)
			}

			var reply string
			if err := client.Call("Echo.Upper", "hi", &reply); err != nil {
				t.Fatal(err)
			}
			if reply != "<hi>" {
				t.Errorf("got %q, want %q", reply, "<hi>")
			}

			// errors from the remote method arrive as rpc.ServerError carrying the message
			err := client.Call("Echo.Upper", "", &reply)
			var serverErr rpc.ServerError
			if !errors.As(err, &serverErr) || err.Error() != "nothing to echo" {
				t.Errorf("got %v, want the remote error", err)
			}

			if err := client.Disconnect(); err != nil {
				t.Fatal(err)
			}
			if err := client.Disconnect(); err == nil {
				t.Error("second disconnect succeeded")
			}
			if err := client.Call("Echo.Upper", "hi", &reply); err == nil {
				t.Error("call after disconnect succeeded")
			}
			if err := server.Stop(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestConnectRefused(t *testing.T) {
	server := NewServer(TCP, Echo{}, "127.0.0.1:0", "EchoServer")
	if err := server.Run(); err != nil {
		t.Fatal(err)
	}
	address := server.Address()
	if err := server.Stop(); err != nil {
		t.Fatal(err)
	}

	client := NewClient(TCP, address, "EchoClient")
	if err := client.Connect(); err == nil {
		t.Error("connected to a stopped server")
		client.Disconnect()
	}
}

func TestTransportText(t *testing.T) {
	var transport Transport
	if err := transport.UnmarshalText([]byte("HTTP")); err != nil || transport != HTTP {
		t.Errorf("got %s, %v", transport, err)
	}
	if err := transport.UnmarshalText([]byte("udp")); err == nil {
		t.Error("unknown transport accepted")
	}
	if text, err := TCP.MarshalText(); err != nil || string(text) != "tcp" {
		t.Errorf("got %q, %v", text, err)
	}
}
