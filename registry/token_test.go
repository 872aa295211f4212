// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absmach/pulsarview/registry"
)

func TestToken(t *testing.T) {
	srv := probeServer(http.StatusOK, http.StatusOK, http.StatusOK)
	defer srv.Close()

	r, _, _ := newRegistry(t)
	conn := registry.Connection{Name: "prod", WebServiceURL: srv.URL, AuthMode: registry.AuthToken}
	require.NoError(t, r.Add(context.Background(), conn, "tok"))

	tok, err := r.Token("prod")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, r.UpdateToken("prod", "rotated"))
	tok, err = r.Token("prod")
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok)

	require.NoError(t, r.UpdateToken("prod", ""))
	tok, err = r.Token("prod")
	require.NoError(t, err)
	assert.Empty(t, tok)

	_, err = r.Token("unknown")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestTokenNoneStored(t *testing.T) {
	srv := probeServer(http.StatusOK, http.StatusOK, http.StatusOK)
	defer srv.Close()

	r, _, _ := newRegistry(t)
	conn := registry.Connection{Name: "open", WebServiceURL: srv.URL, AuthMode: registry.AuthNone}
	require.NoError(t, r.Add(context.Background(), conn, ""))

	tok, err := r.Token("open")
	require.NoError(t, err)
	assert.Empty(t, tok)
}
