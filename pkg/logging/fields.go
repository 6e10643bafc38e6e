package logging

import "log/slog"

// Domain identifiers

func Chat(id string) slog.Attr {
	return slog.String("chat_id", id)
}

func User(id string) slog.Attr {
	return slog.String("user_id", id)
}

func FriendRequest(id string) slog.Attr {
	return slog.String("friend_request_id", id)
}

func Collection(name string) slog.Attr {
	return slog.String("collection", name)
}

// Request / tracing

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func TraceID(id string) slog.Attr {
	return slog.String("trace_id", id)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
