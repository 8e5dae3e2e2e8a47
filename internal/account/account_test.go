package account

import "testing"

func TestPasswordHashAndVerify(t *testing.T) {
	salt, err := GenerateSaltHex()
	if err != nil {
		t.Fatalf("GenerateSaltHex: %v", err)
	}
	hash, err := HashPassword("p@ssw0rd", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyPassword("p@ssw0rd", salt, hash) {
		t.Fatalf("expected verify ok")
	}
	if VerifyPassword("wrong", salt, hash) {
		t.Fatalf("expected verify fail")
	}
}

func TestRolesSliceAndJoin(t *testing.T) {
	a := Account{Roles: " customer, driver ,,"}
	got := a.RolesSlice()
	if len(got) != 2 || got[0] != "customer" || got[1] != "driver" {
		t.Fatalf("unexpected roles: %#v", got)
	}
	if !a.HasRole("Driver") {
		t.Fatalf("expected HasRole case-insensitive match")
	}
	if a.HasRole("admin") {
		t.Fatalf("unexpected admin role")
	}
	if RolesJoin([]string{" customer ", "", "driver"}) != "customer,driver" {
		t.Fatalf("unexpected join result")
	}
}
