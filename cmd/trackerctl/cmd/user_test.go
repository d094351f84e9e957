package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"ADMIN", domain.RoleAdmin, false},
		{"tester", domain.RoleTester, false},
		{" Developer ", domain.RoleDeveloper, false},
		{"viewer", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseRole(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrintUsers(t *testing.T) {
	var buf bytes.Buffer
	printUsers(&buf, nil)
	assert.Equal(t, "No users found.\n", buf.String())

	buf.Reset()
	printUsers(&buf, []domain.User{{
		ID:        "0b7c6a9e-1c55-4b43-9d0e-8e2f7a1d3c11",
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      domain.RoleTester,
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "2024-03-01 09:00:00")
	assert.Contains(t, out, "Total: 1 user(s)")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["user"])

	sub := map[string]bool{}
	for _, c := range userCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["create"])
	assert.True(t, sub["list"])
}
