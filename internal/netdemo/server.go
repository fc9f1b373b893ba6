package netdemo

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/helheim/internal/async"
	"github.com/saiputravu/helheim/internal/book"
)

const (
	maxRecvSize     = 4 * 1024
	defaultNWorkers = 10
	connTimeout     = 5 * time.Second
)

// Server is a small demo TCP front end for an async.Engine. It is not
// part of the matching core's tested contract -- the core is fully usable
// in-process without it.
type Server struct {
	address string
	port    int
	engine  *async.Engine
	pool    WorkerPool

	sessionsMu sync.Mutex
	sessions   map[uint64]net.Conn // order id -> owning connection, for demo trade routing

	cancel context.CancelFunc
}

// New returns a demo server bound to address:port, driving engine.
func New(address string, port int, engine *async.Engine) *Server {
	return &Server{
		address:  address,
		port:     port,
		engine:   engine,
		pool:     NewWorkerPool(defaultNWorkers),
		sessions: make(map[uint64]net.Conn),
	}
}

// Run listens and serves until ctx is cancelled or Shutdown is called.
func (s *Server) Run(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("netdemo: unable to start listener")
		return
	}
	defer listener.Close()

	// Close the listener on cancellation so a blocked Accept returns.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.relayReports(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("netdemo: server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("netdemo: error accepting client")
				continue
			}
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown stops accepting connections and tears down the listener loop.
// It does not shut down the underlying engine -- callers own that
// lifecycle separately.
func (s *Server) Shutdown() {
	log.Info().Msg("netdemo: server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// relayReports drains the engine's egress queue and fans each trade out
// to whichever connections are still tracked for the maker/taker ids.
func (s *Server) relayReports(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		ev, ok := s.engine.PollEvent()
		if !ok {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		for _, trade := range ev.Trades {
			s.sendReport(trade.MakerID, Report{
				Type: ExecutionReport, MakerID: trade.MakerID, TakerID: trade.TakerID,
				Price: trade.Price, Qty: trade.Qty,
			})
			s.sendReport(trade.TakerID, Report{
				Type: ExecutionReport, MakerID: trade.MakerID, TakerID: trade.TakerID,
				Price: trade.Price, Qty: trade.Qty,
			})
		}
	}
}

func (s *Server) sendReport(orderID uint64, report Report) {
	s.sessionsMu.Lock()
	conn, ok := s.sessions[orderID]
	s.sessionsMu.Unlock()
	if !ok {
		return
	}
	if _, err := conn.Write(report.Serialize()); err != nil {
		log.Error().Err(err).Uint64("orderId", orderID).Msg("netdemo: failed to relay report")
	}
}

func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrInvalidMessageType
	}

	conn.SetDeadline(time.Now().Add(connTimeout))

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Error().Err(err).Msg("netdemo: error reading from connection")
		conn.Close()
		return nil
	}

	msg, err := ParseMessage(buf[:n])
	if err != nil {
		log.Error().Err(err).Msg("netdemo: error parsing message")
		s.sendError(conn, err)
		conn.Close()
		return nil
	}

	switch m := msg.(type) {
	case NewOrderMessage:
		s.sessionsMu.Lock()
		s.sessions[m.ID] = conn
		s.sessionsMu.Unlock()
		s.engine.Submit(book.Order{ID: m.ID, Side: m.Side, Price: m.Price, Qty: m.Qty})
	case CancelOrderMessage:
		s.engine.Cancel(m.ID)
	case LogBookMessage:
		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		tob, err := s.engine.QueryTopOfBook(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("netdemo: book snapshot query failed")
			break
		}
		log.Info().Bool("hasBid", tob.HasBid).Int64("bid", tob.BestBid).
			Bool("hasAsk", tob.HasAsk).Int64("ask", tob.BestAsk).Msg("netdemo: book snapshot")
	}

	s.pool.AddTask(conn)
	return nil
}

func (s *Server) sendError(conn net.Conn, err error) {
	report := Report{Type: ErrorReport, Err: err.Error()}
	conn.Write(report.Serialize())
}
