package nakama

// RPC ids registered with the Nakama runtime.
const (
	RpcCreateRoom   = "create_room"
	RpcJoinRoom     = "join_room"
	RpcLeaveRoom    = "leave_room"
	RpcStartGame    = "start_game"
	RpcPlayAgain    = "play_again"
	RpcPlayCards    = "play_cards"
	RpcPassTurn     = "pass_turn"
	RpcDrainUpdates = "drain_updates"
	RpcListRooms    = "list_rooms"
)

const (
	// NotificationCodeUpdates tells a socket-connected user that their seat
	// has pending updates and drain_updates should be called.
	NotificationCodeUpdates = 101
	NotificationSubject     = "staredown_updates"

	// EnvConfigPath is the runtime env key holding the YAML config path.
	EnvConfigPath = "staredown_config"
)

// gRPC status codes used for runtime errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeInternal           = 13
)
