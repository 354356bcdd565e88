// Package mocks provides func-field mock implementations of the service
// interfaces for handler and middleware tests.
//
// Each mock calls its XxxFn field when set and otherwise returns the default
// values held in its plain fields:
//
//	wallet := &mocks.MockWalletService{
//	    RedeemFn: func(ctx context.Context, userID uuid.UUID, rewardID string) (*domain.RedemptionClaim, error) {
//	        return nil, service.ErrInsufficientBalance
//	    },
//	}
//
// A method whose Fn is unset and that has no default returns ErrNotConfigured.
package mocks

import "errors"

// ErrNotConfigured is returned by mock methods that were called without a
// function or default configured.
var ErrNotConfigured = errors.New("mock method not configured")
