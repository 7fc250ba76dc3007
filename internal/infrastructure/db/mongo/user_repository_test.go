package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/opratem/schoolems/internal/core/domain"
)

func updateFor(u *domain.User) bson.M {
	return userUpdateDoc(toMongoUser(u), u)
}

func TestUserUpdateDoc_ClearedEmailIsUnset(t *testing.T) {
	u := &domain.User{
		Username:     "alice",
		Email:        "",
		PasswordHash: "hash",
		Roles:        []domain.Role{domain.RoleEmployee},
		UpdatedAt:    time.Now(),
	}

	update := updateFor(u)
	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected an $unset stage for a cleared email")
	}
	if _, ok := unset["email"]; !ok {
		t.Fatalf("email must be unset when cleared, got %v", unset)
	}
	if _, ok := unset["employee_id"]; !ok {
		t.Fatalf("employee_id must be unset when cleared, got %v", unset)
	}
	if _, ok := unset["reset_token"]; !ok {
		t.Fatalf("reset_token must be unset when cleared, got %v", unset)
	}
}

func TestUserUpdateDoc_PresentFieldsStayInSet(t *testing.T) {
	u := &domain.User{
		Username:         "alice",
		Email:            "alice@example.com",
		PasswordHash:     "hash",
		Roles:            []domain.Role{domain.RoleEmployee},
		EmployeeID:       "emp_1",
		ResetToken:       "tok",
		ResetTokenExpiry: time.Now().Add(time.Hour),
		UpdatedAt:        time.Now(),
	}

	update := updateFor(u)
	if _, ok := update["$unset"]; ok {
		t.Fatalf("no field is cleared, $unset must be absent: %v", update["$unset"])
	}

	doc, ok := update["$set"].(mongoUser)
	if !ok {
		t.Fatalf("expected the $set stage to carry the document")
	}
	if doc.Email != "alice@example.com" || doc.EmployeeID != "emp_1" || doc.ResetToken != "tok" {
		t.Fatalf("optional fields lost from $set: %+v", doc)
	}
}

func TestUserUpdateDoc_MarshalledSetDropsClearedEmail(t *testing.T) {
	u := &domain.User{Username: "alice", PasswordHash: "hash", UpdatedAt: time.Now()}

	raw, err := bson.Marshal(toMongoUser(u))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded bson.M
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := decoded["email"]; present {
		t.Fatalf("omitempty should drop the empty email from $set, got %v", decoded)
	}
	// which is exactly why userUpdateDoc must add the $unset stage
	update := updateFor(u)
	if _, ok := update["$unset"].(bson.M)["email"]; !ok {
		t.Fatalf("cleared email must be unset explicitly")
	}
}
