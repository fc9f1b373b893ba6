// Command server runs the optional TCP demo front end over an async
// engine. Not part of the tested matching contract.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/saiputravu/helheim/internal/async"
	"github.com/saiputravu/helheim/internal/netdemo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := async.New()
	defer engine.Shutdown()

	srv := netdemo.New("0.0.0.0", 9001, engine)
	go srv.Run(ctx)

	<-ctx.Done()
	srv.Shutdown()
}
