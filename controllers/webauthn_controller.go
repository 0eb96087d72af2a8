package controllers

import (
	"community_tool_share/app"
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// WebAuthn: DB user -> webauthn.User
type waUser struct {
	user  models.User
	creds []webauthn.Credential
}

func (u *waUser) WebAuthnID() []byte {
	id, err := uuid.Parse(u.user.ID)
	if err != nil {
		return []byte(u.user.ID)
	}
	return id[:]
}
func (u *waUser) WebAuthnName() string                       { return u.user.Username }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWaCred(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Authenticator: webauthn.Authenticator{
			AAGUID:       c.AAGUID,
			SignCount:    c.SignCount,
			CloneWarning: c.CloneWarning,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
	}
}

func fromWaCred(userID string, cred *webauthn.Credential) *models.Credential {
	return &models.Credential{
		UserID:          userID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		CloneWarning:    cred.Authenticator.CloneWarning,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}
}

func (s *Srv) wrapUser(ctx context.Context, u *models.User) (*waUser, error) {
	cs, err := s.Repo.LoadUserCredentials(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}, nil
}

// passkeyUser 只有启用中的账号可以走 Passkey
func (s *Srv) passkeyUser(ctx context.Context, u *models.User, err error) (*waUser, error) {
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Wrap(err, "load user")
	}
	if !u.IsActive() {
		return nil, apperr.Forbidden("Account is disabled")
	}
	w, err := s.wrapUser(ctx, u)
	if err != nil {
		return nil, apperr.Wrap(err, "load credentials")
	}
	return w, nil
}

func registrationOptions() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

// ===== 添加 Passkey（已登录） =====

func (s *Srv) BeginAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	uid := app.UserID(c)
	u, err := s.Repo.FindUserByID(ctx, uid)
	wUser, err := s.passkeyUser(ctx, u, err)
	if err != nil {
		fail(c, err)
		return
	}

	// 已有凭据排除，避免同一设备重复注册
	exclude := make([]protocol.CredentialDescriptor, 0, len(wUser.creds))
	for _, cred := range wUser.creds {
		exclude = append(exclude, cred.Descriptor())
	}
	opts := append(registrationOptions(), webauthn.WithExclusions(exclude))
	creation, sd, err := s.WA.BeginRegistration(wUser, opts...)
	if err != nil {
		fail(c, apperr.Wrap(err, "begin registration"))
		return
	}
	if err := s.Ceremonies.SaveRegistration(ctx, uid, sd); err != nil {
		fail(c, apperr.Wrap(err, "save registration challenge"))
		return
	}
	ok(c, "", app.H{"opts": creation})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	uid := app.UserID(c)
	u, err := s.Repo.FindUserByID(ctx, uid)
	wUser, err := s.passkeyUser(ctx, u, err)
	if err != nil {
		fail(c, err)
		return
	}
	sd, err := s.Ceremonies.TakeRegistration(ctx, uid)
	if err != nil {
		fail(c, apperr.Validation("registration session expired or invalid"))
		return
	}
	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(uid, cred)); err != nil {
		if db.IsDuplicate(err) {
			fail(c, apperr.Business("Passkey already registered"))
			return
		}
		fail(c, apperr.Wrap(err, "save credential"))
		return
	}
	s.Log.Info("passkey added", "user", uid)
	ok(c, "Passkey added", nil)
}

// ===== Passkey 登录 =====

type loginBeginReq struct {
	Username     string `json:"username"`
	Discoverable bool   `json:"discoverable"`
}

type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if !bind(c, &req) {
		return
	}
	if !req.Discoverable && req.Username == "" {
		fail(c, apperr.Validation("username is required unless discoverable"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	uv := webauthn.WithUserVerification(protocol.VerificationRequired)
	if req.Discoverable {
		opts, sd, err = s.WA.BeginDiscoverableLogin(uv)
	} else {
		u, lookup := s.Repo.FindUserByUsername(ctx, req.Username)
		wUser, perr := s.passkeyUser(ctx, u, lookup)
		if perr != nil {
			fail(c, perr)
			return
		}
		opts, sd, err = s.WA.BeginLogin(wUser, uv)
	}
	if err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}

	sid := uuid.NewString()
	if err := s.Ceremonies.SaveLogin(ctx, sid, sd); err != nil {
		fail(c, apperr.Wrap(err, "save login challenge"))
		return
	}
	ok(c, "", loginBeginResp{Options: opts, SessionID: sid})
}

// FinishLogin ?sessionId=...[&username=...]
func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		fail(c, apperr.Validation("missing sessionId"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	sd, err := s.Ceremonies.TakeLogin(ctx, sid)
	if err != nil {
		fail(c, apperr.Validation("login session expired or invalid"))
		return
	}

	var (
		userID string
		cred   *webauthn.Credential
	)
	if username := c.Query("username"); username != "" {
		u, lookup := s.Repo.FindUserByUsername(ctx, username)
		wUser, perr := s.passkeyUser(ctx, u, lookup)
		if perr != nil {
			fail(c, perr)
			return
		}
		if cred, err = s.WA.FinishLogin(wUser, *sd, c.Request); err != nil {
			fail(c, apperr.Unauthorized(err.Error()))
			return
		}
		userID = wUser.user.ID
	} else {
		var disabled error
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, lookup := s.Repo.FindUserByCredentialID(ctx, rawID)
			w, perr := s.passkeyUser(ctx, u, lookup)
			if perr != nil {
				if apperr.Is(perr, apperr.KindForbidden) {
					disabled = perr
				}
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			return w, nil
		}
		user, got, ferr := s.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if ferr != nil {
			if disabled != nil {
				fail(c, disabled)
				return
			}
			fail(c, apperr.Unauthorized(ferr.Error()))
			return
		}
		wUser, isWa := user.(*waUser)
		if !isWa {
			fail(c, apperr.Wrap(errors.New("unexpected webauthn user type"), "finish passkey login"))
			return
		}
		cred, userID = got, wUser.user.ID
	}

	if err := s.Repo.RecordCredentialUse(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		s.Log.Warn("record credential use failed", "user", userID, "err", err)
	}
	id, err := s.issueSession(ctx, c.Writer, userID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		fail(c, apperr.Wrap(err, "create app session"))
		return
	}
	ok(c, "Login successful", id)
}
