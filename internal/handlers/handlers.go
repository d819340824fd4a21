package handlers

import (
	"log"

	"obrolin/server/internal/config"
	"obrolin/server/internal/database"
	"obrolin/server/internal/store"
	"obrolin/server/internal/ws"
)

var (
	// Cfg is the loaded application configuration
	Cfg config.Config

	// Stores wired against the shared pool
	Users         *store.UserStore
	Conversations *store.ConversationStore
	Calls         *store.CallStore
	Messages      *store.MessageStore

	// WSHub is the global event feed hub instance
	WSHub *ws.Hub
)

// Init wires the stores and starts the event feed hub. Must run after
// database.Connect.
func Init(cfg config.Config) {
	Cfg = cfg

	Users = store.NewUserStore(database.Pool)
	Conversations = store.NewConversationStore(database.Pool)
	Calls = store.NewCallStore(database.Pool)
	Messages = store.NewMessageStore(database.Pool)

	WSHub = ws.NewHub()
	go WSHub.Run()
	log.Println("✅ Event feed hub initialized")
}
