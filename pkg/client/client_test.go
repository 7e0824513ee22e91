package client

import (
	"errors"
	"net"
	"sync"
	"testing"

	"contactdb/pkg/config"
	"contactdb/pkg/core"
	"contactdb/pkg/network"
)

func TestDialInvalidAddr(t *testing.T) {
	_, err := Dial("invalid:invalid:invalid")
	if err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestDialUnreachable(t *testing.T) {
	// Connect to non-routable IP (RFC 5737) - expect error
	_, err := Dial("192.0.2.1:9999")
	if err == nil {
		t.Skip("connection unexpectedly succeeded (e.g. in sandbox)")
	}
}

func startServer(t *testing.T) string {
	addr, _ := startServerOn(t, nil)
	return addr
}

// startServerOn serves a fresh store; wrap, when set, decorates the listener.
func startServerOn(t *testing.T, wrap func(net.Listener) net.Listener) (string, *core.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = t.TempDir()
	cfg.Storage.Backend = config.BackendJSON
	store, err := core.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	if wrap != nil {
		l = wrap(l)
	}
	srv := network.NewTCPServer(store)
	done := make(chan struct{})
	go func() {
		srv.Serve(l)
		close(done)
	}()
	t.Cleanup(func() {
		srv.Close()
		<-done
		store.Close()
	})
	return addr, store
}

// replyLossListener hands out a first connection whose writes all fail, so
// the server applies the first request but its reply never arrives.
type replyLossListener struct {
	net.Listener
	mu      sync.Mutex
	dropped bool
}

func (l *replyLossListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dropped {
		l.dropped = true
		return writeFailConn{conn}, nil
	}
	return conn, nil
}

type writeFailConn struct{ net.Conn }

func (writeFailConn) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestClientDoesNotResendAfterLostReply(t *testing.T) {
	addr, store := startServerOn(t, func(l net.Listener) net.Listener {
		return &replyLossListener{Listener: l}
	})
	cli, err := Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cli.Close()

	err = cli.Add("Zhang San", "13800000001", "")
	if err == nil {
		t.Fatal("expected an error for the lost reply")
	}
	if errors.Is(err, core.ErrDuplicatePhone) {
		t.Fatalf("add was resent after it reached the server: %v", err)
	}
	if n := store.Stats().TotalContacts; n != 1 {
		t.Fatalf("server should hold the contact once, got %d", n)
	}

	// The next call dials a fresh, healthy connection.
	all, err := cli.List()
	if err != nil {
		t.Fatalf("list after reconnect: %v", err)
	}
	if len(all) != 1 || all[0].Phone != "13800000001" {
		t.Fatalf("unexpected contacts: %v", all)
	}
}

func TestClientResendsWhenRequestNeverLeft(t *testing.T) {
	cli, err := Dial(startServer(t))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cli.Close()

	// A dead local socket fails the write itself; nothing reached the server.
	cli.conn.Close()
	if err := cli.Add("Li Si", "13900000001", ""); err != nil {
		t.Fatalf("add should succeed on a fresh connection: %v", err)
	}
	found, err := cli.FindByPhone("139")
	if err != nil || len(found) != 1 {
		t.Fatalf("expected one contact, got %v err=%v", found, err)
	}
}

func TestClientAgainstServer(t *testing.T) {
	cli, err := Dial(startServer(t))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cli.Close()

	if err := cli.Add("Zhang San", "13800000001", "work"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cli.Add("Zhang Si", "13800000002", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cli.Add("Li Si", "13800000001", ""); !errors.Is(err, core.ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
	if err := cli.Add("", "13800000009", ""); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	found, err := cli.FindByName("Zhang")
	if err != nil || len(found) != 2 {
		t.Fatalf("find by name: got %v err=%v", found, err)
	}
	found, err = cli.FindByPhone("1380000000")
	if err != nil || len(found) != 2 {
		t.Fatalf("find by phone: got %v err=%v", found, err)
	}

	n, err := cli.Delete("Zhang San")
	if err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	if _, err := cli.Delete("nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := cli.List()
	if err != nil || len(all) != 1 || all[0].Phone != "13800000002" {
		t.Fatalf("list: got %v err=%v", all, err)
	}

	st, err := cli.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalContacts != 1 || st.UniqueNames != 1 || !st.NameIndexEnabled {
		t.Fatalf("unexpected stats: %+v", st)
	}

	saved, err := cli.Save()
	if err != nil || saved != 1 {
		t.Fatalf("save: n=%d err=%v", saved, err)
	}
}
