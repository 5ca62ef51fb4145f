package migration

import "github.com/google/uuid"

// idNamespace anchors the deterministic legacy-to-new id mapping. Running the
// migration twice, or resuming after a crash, always produces the same ids,
// which is what makes the upserts and the rollback path safe.
var idNamespace = uuid.MustParse("8f6b1d2c-4a57-4c8e-9d30-f1a2b3c4d5e6")

// MapID derives the destination uuid for a legacy row. The table name is part
// of the key so that identical ids in different legacy tables never collide.
func MapID(table, legacyID string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(table+":"+legacyID))
}
