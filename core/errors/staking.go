package errors

import stderrors "errors"

var (
	ErrNotOwner           = stderrors.New("staking: caller is not the owner")
	ErrAlreadyInitialized = stderrors.New("staking: already initialized")
	ErrNotInitialized     = stderrors.New("staking: not initialized")
	ErrUnknownPosition    = stderrors.New("staking: unknown position")
	ErrNotPositionOwner   = stderrors.New("staking: not your nft")
)
