package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"contactdb/pkg/common"
	"contactdb/pkg/core"
	"contactdb/pkg/protocol"
)

const dialTimeout = 5 * time.Second

type Client struct {
	conn net.Conn
	addr string
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		addr: addr,
	}, nil
}

func (c *Client) Add(name, phone, remark string) error {
	payload, err := common.EncodeContact(common.Contact{Name: name, Phone: phone, Remark: remark})
	if err != nil {
		return err
	}
	pkg, err := c.roundTrip(protocol.OpAdd, nil, payload)
	if err != nil {
		return err
	}
	return expect(pkg, protocol.RespOK)
}

// Delete returns how many contacts the server removed.
func (c *Client) Delete(key string) (int, error) {
	pkg, err := c.roundTrip(protocol.OpDel, []byte(key), nil)
	if err != nil {
		return 0, err
	}
	if err := expect(pkg, protocol.RespVal); err != nil {
		return 0, err
	}
	return protocol.DecodeCount(pkg.Value)
}

func (c *Client) FindByName(prefix string) ([]common.Contact, error) {
	return c.contacts(protocol.OpFindName, []byte(prefix))
}

func (c *Client) FindByPhone(prefix string) ([]common.Contact, error) {
	return c.contacts(protocol.OpFindPhone, []byte(prefix))
}

func (c *Client) List() ([]common.Contact, error) {
	return c.contacts(protocol.OpList, nil)
}

func (c *Client) Stats() (core.Stats, error) {
	var st core.Stats
	pkg, err := c.roundTrip(protocol.OpStat, nil, nil)
	if err != nil {
		return st, err
	}
	if err := expect(pkg, protocol.RespVal); err != nil {
		return st, err
	}
	err = json.Unmarshal(pkg.Value, &st)
	return st, err
}

// Save asks the server to snapshot; it returns the number of contacts written.
func (c *Client) Save() (int, error) {
	pkg, err := c.roundTrip(protocol.OpSave, nil, nil)
	if err != nil {
		return 0, err
	}
	if err := expect(pkg, protocol.RespVal); err != nil {
		return 0, err
	}
	return protocol.DecodeCount(pkg.Value)
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) contacts(op byte, key []byte) ([]common.Contact, error) {
	pkg, err := c.roundTrip(op, key, nil)
	if err != nil {
		return nil, err
	}
	if err := expect(pkg, protocol.RespVal); err != nil {
		return nil, err
	}
	return common.DecodeContacts(pkg.Value)
}

// roundTrip sends one request and reads one response. A request that
// could not be written is resent once on a fresh connection. Once it went
// out, a lost reply is returned as an error: the server may already have
// applied it, and resending an add or delete would report a false failure.
func (c *Client) roundTrip(op byte, key, val []byte) (*protocol.Packet, error) {
	if c.conn == nil {
		if err := c.redial(); err != nil {
			return nil, err
		}
	}

	if err := protocol.Encode(c.conn, op, key, val); err != nil {
		if errors.Is(err, protocol.ErrFrameTooLarge) {
			return nil, err
		}
		if err := c.redial(); err != nil {
			return nil, err
		}
		if err := protocol.Encode(c.conn, op, key, val); err != nil {
			c.drop()
			return nil, err
		}
	}

	pkg, err := protocol.Decode(c.conn)
	if err != nil {
		c.drop()
		return nil, err
	}
	return pkg, nil
}

func (c *Client) redial() error {
	c.drop()
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// drop closes the current connection; the next call dials again.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func expect(pkg *protocol.Packet, op byte) error {
	if pkg.Op == op {
		return nil
	}
	if pkg.Op != protocol.RespErr {
		return errors.New("unknown response")
	}
	code, msg := protocol.DecodeError(pkg.Value)
	switch code {
	case protocol.ErrCodeValidation:
		return fmt.Errorf("%w (server: %s)", core.ErrValidation, msg)
	case protocol.ErrCodeDuplicate:
		return fmt.Errorf("%w (server: %s)", core.ErrDuplicatePhone, msg)
	case protocol.ErrCodeNotFound:
		return fmt.Errorf("%w (server: %s)", core.ErrNotFound, msg)
	default:
		return fmt.Errorf("server error: %s", msg)
	}
}
