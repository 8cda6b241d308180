package models

import "encoding/json"

// Serialize renders an entity to the byte form stored on Event.Serialized*
// fields and on the GitOps-independent audit trail. JSON keeps the store
// and eventstream packages free of any dependency on the rpc wire types,
// which evolve independently of what's persisted in the event log.
func Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Deserialize is the inverse of Serialize.
func Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
