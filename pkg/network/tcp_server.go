package network

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"contactdb/pkg/common"
	"contactdb/pkg/core"
	"contactdb/pkg/protocol"
)

type TCPServer struct {
	store *core.Store

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func NewTCPServer(store *core.Store) *TCPServer {
	return &TCPServer{store: store}
}

func (s *TCPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections on l until Close is called.
func (s *TCPServer) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return l.Close()
	}
	s.listener = l
	s.mu.Unlock()
	log.Printf("[TCP] Listening on %s (Binary Protocol)", l.Addr())

	for {
		conn, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("[TCP] Accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *TCPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		req, err := protocol.Decode(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("[TCP] Decode error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		if err := s.dispatch(conn, req); err != nil {
			log.Printf("[TCP] Write error to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *TCPServer) dispatch(w io.Writer, req *protocol.Packet) error {
	switch req.Op {
	case protocol.OpAdd:
		c, err := common.DecodeContact(req.Value)
		if err != nil {
			return writeErr(w, protocol.ErrCodeBadRequest, err)
		}
		if _, err := s.store.Add(c.Name, c.Phone, c.Remark); err != nil {
			return writeErr(w, errorCode(err), err)
		}
		return protocol.Encode(w, protocol.RespOK, nil, nil)

	case protocol.OpDel:
		n, err := s.store.Delete(string(req.Key))
		if err != nil {
			return writeErr(w, errorCode(err), err)
		}
		return protocol.Encode(w, protocol.RespVal, nil, protocol.EncodeCount(n))

	case protocol.OpFindName:
		return writeContacts(w, s.store.FindByNamePrefix(string(req.Key)))

	case protocol.OpFindPhone:
		return writeContacts(w, s.store.FindByPhonePrefix(string(req.Key)))

	case protocol.OpList:
		return writeContacts(w, s.store.List())

	case protocol.OpStat:
		data, err := json.Marshal(s.store.Stats())
		if err != nil {
			return writeErr(w, protocol.ErrCodeInternal, err)
		}
		return protocol.Encode(w, protocol.RespVal, nil, data)

	case protocol.OpSave:
		n, err := s.store.Save()
		if err != nil {
			return writeErr(w, protocol.ErrCodeInternal, err)
		}
		return protocol.Encode(w, protocol.RespVal, nil, protocol.EncodeCount(n))

	default:
		return writeErr(w, protocol.ErrCodeBadRequest, errors.New("unknown op"))
	}
}

func writeContacts(w io.Writer, contacts []common.Contact) error {
	data, err := common.EncodeContacts(contacts)
	if err != nil {
		return writeErr(w, protocol.ErrCodeInternal, err)
	}
	if len(data) > protocol.MaxValueSize {
		return writeErr(w, protocol.ErrCodeInternal, protocol.ErrFrameTooLarge)
	}
	return protocol.Encode(w, protocol.RespVal, nil, data)
}

func writeErr(w io.Writer, code byte, err error) error {
	return protocol.Encode(w, protocol.RespErr, nil, protocol.EncodeError(code, err.Error()))
}

func errorCode(err error) byte {
	switch {
	case errors.Is(err, core.ErrValidation):
		return protocol.ErrCodeValidation
	case errors.Is(err, core.ErrDuplicatePhone):
		return protocol.ErrCodeDuplicate
	case errors.Is(err, core.ErrNotFound):
		return protocol.ErrCodeNotFound
	default:
		return protocol.ErrCodeInternal
	}
}
