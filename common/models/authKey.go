package models

import (
	"fmt"
	"time"
)

type UsedAuthKey struct {
	FusedKey     string    `dynamodbav:"fused_key"`
	RandomString string    `dynamodbav:"random_string"`
	Timestamp    int64     `dynamodbav:"timestamp"`
	IPAddress    string    `dynamodbav:"ip_address"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
	// DynamoDB TTL attribute, epoch seconds
	ExpiresAt int64 `dynamodbav:"expires_at"`

	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
}

// Key handlers
func AuthKeyPK(fusedKey string) string {
	return fmt.Sprintf("AUTHKEY#%s", fusedKey)
}

func MetaSK() string {
	return "META"
}

func AuthKeysGSI1PK() string {
	return "AUTHKEYS"
}

func (k *UsedAuthKey) SetKeys() {
	k.PK = AuthKeyPK(k.FusedKey)
	k.SK = MetaSK()
	k.GSI1PK = AuthKeysGSI1PK()
	k.GSI1SK = TimestampSK("TS", k.Timestamp, k.FusedKey)
}
