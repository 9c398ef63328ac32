package nakama

const (
	// RpcCreateTable is the Nakama RPC id clients call to open or find the table of a channel.
	RpcCreateTable = "create_table"

	// RpcTableStandings returns a player's stored standing.
	RpcTableStandings = "table_standings"

	// MatchNameJacks is the authoritative match handler name registered with Nakama.
	MatchNameJacks = "jacks_table"

	// GameConfigPath is read once per process; missing files fall back to defaults.
	GameConfigPath = "data/jacks_config.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpReady        int64 = 1
	OpKick         int64 = 2
	OpCancel       int64 = 3
	OpOfferPass    int64 = 4
	OpPlayCard     int64 = 5
	OpRequestState int64 = 6

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpPlayerKicked   int64 = 103
	OpLobbyCancelled int64 = 104
	OpGameStarted    int64 = 105
	OpHandDealt      int64 = 106 // send privately
	OpPassCommitted  int64 = 107
	OpCardsReceived  int64 = 108 // send privately
	OpPlayingStarted int64 = 109
	OpCardPlayed     int64 = 110
	OpTrickResolved  int64 = 111
	OpHandCompleted  int64 = 112
	OpTableState     int64 = 120 // send privately
	OpGameError      int64 = 199
)
