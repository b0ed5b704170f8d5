package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Pipeline field helpers for common field names
func Component(name string) Field {
	return String("component", name)
}

func Path(p string) Field {
	return String("path", p)
}

func FileID(id string) Field {
	return String("file_id", id)
}

func BuildingID(id string) Field {
	return String("building_id", id)
}

func ElementID(id string) Field {
	return String("element_id", id)
}

func Strategy(name string) Field {
	return String("strategy", name)
}

func VertexCount(n int) Field {
	return Int("vertex_count", n)
}

func EdgeCount(n int) Field {
	return Int("edge_count", n)
}

func NodeCount(n int) Field {
	return Int("node_count", n)
}

func TokenType(t string) Field {
	return String("token_type", t)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
