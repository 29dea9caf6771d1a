package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "avatarops_"

const (
	TABLE_USER           = TableName("user")
	TABLE_KNOWLEDGE_BASE = TableName("knowledge_base")
	TABLE_CONVERSATION   = TableName("conversation")
	TABLE_MESSAGE        = TableName("message")
)
