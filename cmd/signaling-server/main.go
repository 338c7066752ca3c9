package main

import (
	"log"
	"net/http"

	"go.uber.org/fx"

	"github.com/TriNguyen5204/collab-sphere-signaling/internal/room"
	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/service"
	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/variables"

	_ "net/http/pprof"
)

func main() {
	go func() {
		addr := "localhost:" + variables.Env(variables.PPROF_PORT_NAME, variables.PPROF_PORT_DEFAULT)
		log.Println(http.ListenAndServe(addr, nil))
	}()

	fx.New(
		fx.Provide(
			room.NewRoomService,
			room.NewRoomNotifier,

			protocol.AsHttpController(room.NewRoomController),
		),

		service.LoggerModule,
		service.HttpModule,
	).Run()
}
