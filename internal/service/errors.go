package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; everything else surfaces as an internal error.
var (
	// ErrNotFound covers lookups of resources that do not exist. Ownership
	// checks also return ErrForbidden for missing resources so callers cannot
	// probe for existence.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden covers authenticated callers acting outside their rights.
	ErrForbidden = errors.New("not authorized for this resource")

	// ErrInvalidCredentials covers failed logins. The message never says
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken covers signup with an email already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrAlreadyJoined covers a duplicate join of the directly targeted
	// session. Duplicates hit during series fan-out are skipped silently.
	ErrAlreadyJoined = errors.New("already a participant of this session")

	// ErrAlreadyMember covers a duplicate group join.
	ErrAlreadyMember = errors.New("already a member of this group")

	// ErrInvalidJoinCode covers joins with a code that matches no session.
	ErrInvalidJoinCode = errors.New("invalid join code")

	// ErrJoinCodeExhausted covers failure to mint a unique join code after
	// the retry budget.
	ErrJoinCodeExhausted = errors.New("could not generate a unique join code")

	// ErrPrivateSession covers direct joins of a private session without an
	// accepted invite.
	ErrPrivateSession = errors.New("session is private")

	// ErrPrivateGroup covers self-service joins of a private group.
	ErrPrivateGroup = errors.New("group is private")

	// ErrReplyDepthExceeded covers replies to a comment that is itself a reply.
	ErrReplyDepthExceeded = errors.New("replies cannot be nested further")

	// ErrReplyPassageMismatch covers replies whose parent sits on a different passage.
	ErrReplyPassageMismatch = errors.New("parent comment belongs to a different passage")

	// ErrAlreadyInvited covers repeat invites of the same user to a session.
	ErrAlreadyInvited = errors.New("user already invited to this session")

	// ErrJoinRequestResolved covers responses to an invite that already left PENDING.
	ErrJoinRequestResolved = errors.New("join request already resolved")

	// ErrLeaderRemoval covers attempts to remove a group's leader from its
	// own member list.
	ErrLeaderRemoval = errors.New("group leader cannot be removed, delete the group instead")

	// ErrSelfDemotion covers admins changing or deleting their own account
	// through the admin surface.
	ErrSelfDemotion = errors.New("admins cannot modify their own account")
)
