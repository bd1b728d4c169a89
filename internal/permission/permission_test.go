package permission

import (
	"testing"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

func user(id int64, role string) *model.User {
	return &model.User{ID: id, Role: role}
}

func superuser(id int64) *model.User {
	return &model.User{ID: id, Role: model.RoleUser, IsSuperuser: true}
}

func TestCatalog(t *testing.T) {
	tests := []struct {
		name   string
		caller *model.User
		action Action
		want   bool
		reason string
	}{
		{"anonymous read", nil, ActionRead, true, ""},
		{"anonymous create", nil, ActionCreate, false, ReasonAuthRequired},
		{"user read", user(1, model.RoleUser), ActionRead, true, ""},
		{"user create", user(1, model.RoleUser), ActionCreate, false, ReasonAdminRequired},
		{"moderator delete", user(1, model.RoleModerator), ActionDelete, false, ReasonAdminRequired},
		{"admin create", user(1, model.RoleAdmin), ActionCreate, true, ""},
		{"admin delete", user(1, model.RoleAdmin), ActionDelete, true, ""},
		{"superuser update", superuser(1), ActionUpdate, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Catalog(tt.caller, tt.action)
			if got.Allowed != tt.want {
				t.Errorf("Catalog() allowed = %v, want %v", got.Allowed, tt.want)
			}
			if got.Reason != tt.reason {
				t.Errorf("Catalog() reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestReviewContent(t *testing.T) {
	const ownerID = 7

	tests := []struct {
		name   string
		caller *model.User
		action Action
		want   bool
		reason string
	}{
		{"anonymous read", nil, ActionRead, true, ""},
		{"anonymous create", nil, ActionCreate, false, ReasonAuthRequired},
		{"anonymous delete", nil, ActionDelete, false, ReasonAuthRequired},
		{"user create", user(1, model.RoleUser), ActionCreate, true, ""},
		{"author update", user(ownerID, model.RoleUser), ActionUpdate, true, ""},
		{"author delete", user(ownerID, model.RoleUser), ActionDelete, true, ""},
		{"other user update", user(1, model.RoleUser), ActionUpdate, false, ReasonNoAccess},
		{"other user delete", user(1, model.RoleUser), ActionDelete, false, ReasonNoAccess},
		{"moderator update", user(1, model.RoleModerator), ActionUpdate, true, ""},
		{"admin delete", user(1, model.RoleAdmin), ActionDelete, true, ""},
		{"superuser delete", superuser(1), ActionDelete, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReviewContent(tt.caller, tt.action, ownerID)
			if got.Allowed != tt.want {
				t.Errorf("ReviewContent() allowed = %v, want %v", got.Allowed, tt.want)
			}
			if got.Reason != tt.reason {
				t.Errorf("ReviewContent() reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestUserAdmin(t *testing.T) {
	if d := UserAdmin(nil); d.Allowed || d.Reason != ReasonAuthRequired {
		t.Errorf("UserAdmin(nil) = %+v", d)
	}
	if d := UserAdmin(user(1, model.RoleUser)); d.Allowed || d.Reason != ReasonAdminRequired {
		t.Errorf("UserAdmin(user) = %+v", d)
	}
	if d := UserAdmin(user(1, model.RoleModerator)); d.Allowed {
		t.Errorf("UserAdmin(moderator) = %+v", d)
	}
	if d := UserAdmin(user(1, model.RoleAdmin)); !d.Allowed {
		t.Errorf("UserAdmin(admin) = %+v", d)
	}
	if d := UserAdmin(superuser(1)); !d.Allowed {
		t.Errorf("UserAdmin(superuser) = %+v", d)
	}
}

func TestMe(t *testing.T) {
	if d := Me(nil); d.Allowed {
		t.Errorf("Me(nil) = %+v", d)
	}
	if d := Me(user(1, model.RoleUser)); !d.Allowed {
		t.Errorf("Me(user) = %+v", d)
	}
}
