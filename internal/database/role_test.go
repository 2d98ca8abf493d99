package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "lowercase", input: "admin", want: RoleAdmin},
		{name: "capitalised", input: "Student", want: RoleStudent},
		{name: "padded", input: " TEACHER ", want: RoleTeacher},
		{name: "unknown", input: "janitor", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownRole))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles([]string{"student,Teacher", "student", ""})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleStudent, RoleTeacher}, roles)

	_, err = ParseRoles([]string{"admin,ghost"})
	assert.Error(t, err)
}

func TestRoleFilter(t *testing.T) {
	users := []User{
		{Base: Base{ID: 1}, Admin: &Admin{}},
		{Base: Base{ID: 2}, Student: &Student{}},
		{Base: Base{ID: 3}, Teacher: &Teacher{}},
		{Base: Base{ID: 4}},
	}
	ids := func(us []User) []uint {
		out := make([]uint, 0, len(us))
		for _, u := range us {
			out = append(out, u.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter RoleFilter
		want   []uint
	}{
		{name: "no filter", filter: RoleFilter{}, want: []uint{1, 2, 3, 4}},
		{name: "whitelist", filter: RoleFilter{Whitelist: []Role{RoleStudent, RoleTeacher}}, want: []uint{2, 3}},
		{name: "blacklist", filter: RoleFilter{Blacklist: []Role{RoleAdmin}}, want: []uint{2, 3, 4}},
		{
			name:   "both",
			filter: RoleFilter{Whitelist: []Role{RoleStudent, RoleTeacher}, Blacklist: []Role{RoleTeacher}},
			want:   []uint{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(users)))
		})
	}
}
