package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerIndex     int    `json:"player_index"`
	SessionID       string `json:"session_id"`
}

// ITEM_DROP (client -> server). Payload carries the raw wire bytes of the
// drop packet; see DecodeDropPayload for the layout.
type ItemDropMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Payload         []byte `json:"payload"`
}

// SLOT_UPDATE (server -> all clients). One message per inventory slot index.
type SlotUpdateMsg struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"player_index"`
	Slot        int    `json:"slot"`
	ItemID      int    `json:"item_id"`
	Stack       int    `json:"stack"`
	Prefix      int    `json:"prefix"`
}

// CHAT (server -> one client)
type ChatMsg struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// BROADCAST (server -> all clients)
type BroadcastMsg struct {
	Type  string   `json:"type"`
	Text  string   `json:"text"`
	Color [3]uint8 `json:"color"`
}
