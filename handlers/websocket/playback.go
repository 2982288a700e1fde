package websocket

import (
	"sync"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Playback rooms keep a presenter and any number of viewers on the same
// step: the presenter emits step-change and effect-trigger events, the
// server fans them out to the deck's room. High-frequency pointer previews
// go over the volatile variant and may be dropped under backpressure.

var (
	activeRooms = make(map[string]int)
	roomsMutex  sync.RWMutex
)

// GetActiveRooms returns a snapshot of deck rooms and their viewer counts.
func GetActiveRooms() map[string]int {
	roomsMutex.RLock()
	defer roomsMutex.RUnlock()

	rooms := make(map[string]int, len(activeRooms))
	for k, v := range activeRooms {
		rooms[k] = v
	}
	return rooms
}

func SetupSocketIO() *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		me := socket.Id()
		myRoom := socketio.Room(me)
		_ = srv.To(myRoom).Emit("init-room")
		utils.Log().Printf("init room %v\n", myRoom)

		socket.On("join-deck", func(datas ...any) {
			if len(datas) == 0 {
				return
			}
			deckID, ok := datas[0].(string)
			if !ok || deckID == "" {
				return
			}

			room := socketio.Room(deckID)
			socket.Join(room)
			utils.Log().Printf("Socket %v has joined deck %v\n", me, room)

			srv.In(room).FetchSockets()(func(viewers []*socketio.RemoteSocket, _ error) {
				roomsMutex.Lock()
				activeRooms[deckID] = len(viewers)
				roomsMutex.Unlock()

				if len(viewers) <= 1 {
					_ = srv.To(myRoom).Emit("first-in-deck")
				} else {
					utils.Log().Printf("emit new viewer %v in deck %v\n", me, room)
					_ = socket.Broadcast().To(room).Emit("new-viewer", me)
				}

				viewerIDs := make([]socketio.SocketId, 0, len(viewers))
				for _, viewer := range viewers {
					viewerIDs = append(viewerIDs, viewer.Id())
				}
				utils.Log().Printf("deck %v has viewers %v\n", room, viewerIDs)
				srv.In(room).Emit("deck-viewer-change", viewerIDs)
			})
		})

		// Presenter advanced or retreated the timeline; every viewer follows.
		socket.On("step-change", func(datas ...any) {
			if len(datas) < 2 {
				return
			}
			deckID, ok := datas[0].(string)
			if !ok || deckID == "" {
				return
			}
			utils.Log().Printf("viewer %v sends step change to deck %v\n", me, deckID)
			_ = socket.Broadcast().To(socketio.Room(deckID)).Emit("step-changed", datas[1])
		})

		// Presenter triggered an effect; viewers replay it locally.
		socket.On("effect-trigger", func(datas ...any) {
			if len(datas) < 2 {
				return
			}
			deckID, ok := datas[0].(string)
			if !ok || deckID == "" {
				return
			}
			utils.Log().Printf("viewer %v sends effect trigger to deck %v\n", me, deckID)
			_ = socket.Broadcast().To(socketio.Room(deckID)).Emit("effect-triggered", datas[1])
		})

		// Pointer previews are droppable; losing one is harmless.
		socket.On("pointer-preview", func(datas ...any) {
			if len(datas) < 2 {
				return
			}
			deckID, ok := datas[0].(string)
			if !ok || deckID == "" {
				return
			}
			_ = socket.Volatile().Broadcast().To(socketio.Room(deckID)).Emit("pointer-preview", datas[1])
		})

		socket.On("disconnecting", func(datas ...any) {
			for _, currentRoom := range socket.Rooms().Keys() {
				deckID := string(currentRoom)
				srv.In(currentRoom).FetchSockets()(func(viewers []*socketio.RemoteSocket, _ error) {
					utils.Log().Printf("disconnecting %v from deck %v\n", me, currentRoom)

					otherViewers := make([]socketio.SocketId, 0, len(viewers))
					for _, viewer := range viewers {
						if viewer.Id() != me {
							otherViewers = append(otherViewers, viewer.Id())
						}
					}

					roomsMutex.Lock()
					if len(otherViewers) == 0 {
						delete(activeRooms, deckID)
					} else {
						activeRooms[deckID] = len(otherViewers)
					}
					roomsMutex.Unlock()

					if len(otherViewers) > 0 {
						utils.Log().Printf("leaving viewer, deck %v has viewers %v\n", currentRoom, otherViewers)
						srv.In(currentRoom).Emit("deck-viewer-change", otherViewers)
					}
				})
			}
		})

		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv
}
