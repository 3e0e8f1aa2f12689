package redis

import "fmt"

// teamsKey returns the Redis key for the stored team roster
func teamsKey(prefix string) string {
	return fmt.Sprintf("%s:doc:teams", prefix)
}

// configKey returns the Redis key for the stored launcher configuration
func configKey(prefix string) string {
	return fmt.Sprintf("%s:doc:config", prefix)
}

// revisionsKey returns the Redis key for the LIST of upload revisions
func revisionsKey(prefix string) string {
	return fmt.Sprintf("%s:revisions", prefix)
}
