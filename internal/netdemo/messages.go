// Package netdemo adapts a binary TCP framing and worker pool to this
// repo's single-instrument async engine: a small, explicitly out-of-core
// wire protocol so the matching core can be driven over a socket instead
// of only in-process. None of this package is part of the tested
// matching contract; wire protocols are not required to drive the book or
// engine, which are fully usable in-process.
package netdemo

import (
	"encoding/binary"
	"errors"

	"github.com/saiputravu/helheim/internal/book"
)

var (
	ErrInvalidMessageType = errors.New("netdemo: invalid message type")
	ErrMessageTooShort    = errors.New("netdemo: message too short")
)

// MessageType tags an inbound wire message.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	LogBook
)

const baseHeaderLen = 2 // MessageType

// NewOrderMessageLen is the fixed body length following the header:
// id(8) + side(1) + price(8) + qty(8).
const NewOrderMessageLen = 8 + 1 + 8 + 8

// CancelOrderMessageLen is the fixed body length following the header:
// id(8).
const CancelOrderMessageLen = 8

// Message is anything parsed off the wire.
type Message interface {
	Type() MessageType
}

type NewOrderMessage struct {
	ID    uint64
	Side  book.Side
	Price int64
	Qty   int64
}

func (NewOrderMessage) Type() MessageType { return NewOrder }

func (m NewOrderMessage) Order() book.Order {
	return book.Order{ID: m.ID, Side: m.Side, Price: m.Price, Qty: m.Qty}
}

type CancelOrderMessage struct {
	ID uint64
}

func (CancelOrderMessage) Type() MessageType { return CancelOrder }

type LogBookMessage struct{}

func (LogBookMessage) Type() MessageType { return LogBook }

// ParseMessage decodes one wire message, including its 2-byte type
// header.
func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < baseHeaderLen {
		return nil, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]

	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case LogBook:
		return LogBookMessage{}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < NewOrderMessageLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	return NewOrderMessage{
		ID:    binary.BigEndian.Uint64(body[0:8]),
		Side:  book.Side(body[8]),
		Price: int64(binary.BigEndian.Uint64(body[9:17])),
		Qty:   int64(binary.BigEndian.Uint64(body[17:25])),
	}, nil
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	if len(body) < CancelOrderMessageLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{ID: binary.BigEndian.Uint64(body[0:8])}, nil
}

// EncodeNewOrder is the client-side counterpart to parseNewOrder.
func EncodeNewOrder(m NewOrderMessage) []byte {
	buf := make([]byte, baseHeaderLen+NewOrderMessageLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint64(buf[2:10], m.ID)
	buf[10] = byte(m.Side)
	binary.BigEndian.PutUint64(buf[11:19], uint64(m.Price))
	binary.BigEndian.PutUint64(buf[19:27], uint64(m.Qty))
	return buf
}

// EncodeCancelOrder is the client-side counterpart to parseCancelOrder.
func EncodeCancelOrder(id uint64) []byte {
	buf := make([]byte, baseHeaderLen+CancelOrderMessageLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint64(buf[2:10], id)
	return buf
}

// EncodeLogBook is the client-side counterpart to the LogBook message.
func EncodeLogBook() []byte {
	buf := make([]byte, baseHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(LogBook))
	return buf
}

// ReportMessageType tags an outbound report.
type ReportMessageType byte

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

const reportFixedLen = 1 + 8 + 8 + 8 + 8 + 4 // type + maker + taker + price + qty + errLen

// Report is a single trade fill or error, sent back to a connected client.
type Report struct {
	Type    ReportMessageType
	MakerID uint64
	TakerID uint64
	Price   int64
	Qty     int64
	Err     string
}

// Serialize converts the report to wire bytes.
func (r Report) Serialize() []byte {
	buf := make([]byte, reportFixedLen+len(r.Err))
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.MakerID)
	binary.BigEndian.PutUint64(buf[9:17], r.TakerID)
	binary.BigEndian.PutUint64(buf[17:25], uint64(r.Price))
	binary.BigEndian.PutUint64(buf[25:33], uint64(r.Qty))
	binary.BigEndian.PutUint32(buf[33:37], uint32(len(r.Err)))
	copy(buf[37:], r.Err)
	return buf
}

// ParseReport decodes wire bytes produced by Serialize -- used by the
// demo client to print incoming reports.
func ParseReport(buf []byte) (Report, error) {
	if len(buf) < reportFixedLen {
		return Report{}, ErrMessageTooShort
	}
	errLen := binary.BigEndian.Uint32(buf[33:37])
	if len(buf) < reportFixedLen+int(errLen) {
		return Report{}, ErrMessageTooShort
	}
	return Report{
		Type:    ReportMessageType(buf[0]),
		MakerID: binary.BigEndian.Uint64(buf[1:9]),
		TakerID: binary.BigEndian.Uint64(buf[9:17]),
		Price:   int64(binary.BigEndian.Uint64(buf[17:25])),
		Qty:     int64(binary.BigEndian.Uint64(buf[25:33])),
		Err:     string(buf[37 : 37+errLen]),
	}, nil
}

// ReportFixedLen exposes reportFixedLen to callers that need to read a
// fixed header before knowing the variable-length error string's size.
const ReportFixedLen = reportFixedLen

// ReportErrLen reads the variable-length error string's size out of a
// buffer containing at least the fixed header, so a caller can read
// exactly that many more bytes before calling ParseReport.
func ReportErrLen(header []byte) uint32 {
	return binary.BigEndian.Uint32(header[33:37])
}
