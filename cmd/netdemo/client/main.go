// Command client sends a single order or cancel request to the netdemo
// server and prints execution reports as they arrive. Not part of the
// tested matching contract.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"

	"github.com/saiputravu/helheim/internal/book"
	"github.com/saiputravu/helheim/internal/netdemo"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the demo server")
	action := flag.String("action", "place", "action: place | cancel | log")
	id := flag.Uint64("id", 0, "order id")
	sideStr := flag.String("side", "buy", "buy | sell")
	price := flag.Int64("price", 100, "limit price (ticks)")
	qty := flag.Int64("qty", 10, "quantity")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	go readReports(conn)

	switch strings.ToLower(*action) {
	case "place":
		side := book.Buy
		if strings.ToLower(*sideStr) == "sell" {
			side = book.Sell
		}
		msg := netdemo.NewOrderMessage{ID: *id, Side: side, Price: *price, Qty: *qty}
		if _, err := conn.Write(netdemo.EncodeNewOrder(msg)); err != nil {
			log.Fatalf("failed to send order: %v", err)
		}
		fmt.Printf("-> sent order #%d %s %d@%d\n", *id, side, *qty, *price)
	case "cancel":
		if _, err := conn.Write(netdemo.EncodeCancelOrder(*id)); err != nil {
			log.Fatalf("failed to send cancel: %v", err)
		}
		fmt.Printf("-> sent cancel for #%d\n", *id)
	case "log":
		if _, err := conn.Write(netdemo.EncodeLogBook()); err != nil {
			log.Fatalf("failed to send log request: %v", err)
		}
	default:
		log.Fatalf("unknown action %q", *action)
	}

	fmt.Println("listening for reports... (ctrl-c to exit)")
	select {}
}

func readReports(conn net.Conn) {
	for {
		header := make([]byte, netdemo.ReportFixedLen)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			return
		}
		errLen := netdemo.ReportErrLen(header)
		full := header
		if errLen > 0 {
			tail := make([]byte, errLen)
			if _, err := io.ReadFull(conn, tail); err != nil {
				log.Printf("connection lost mid-report: %v", err)
				return
			}
			full = append(full, tail...)
		}
		report, err := netdemo.ParseReport(full)
		if err != nil {
			log.Printf("error parsing report: %v", err)
			continue
		}
		if report.Type == netdemo.ErrorReport {
			fmt.Printf("[ERROR] %s\n", report.Err)
			continue
		}
		fmt.Printf("[EXECUTION] maker=%d taker=%d qty=%d price=%d\n",
			report.MakerID, report.TakerID, report.Qty, report.Price)
	}
}
