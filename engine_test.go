package goRotate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/password"
	"github.com/MrEthical07/goRotate/refresh"
)

func TestLoginIssuesRootSession(t *testing.T) {
	env := newTestEnv(t, nil)
	set := env.login(t, "u1")

	if set.RSID == "" || set.AccessToken == "" || set.RefreshToken == "" {
		t.Fatalf("incomplete token set: %+v", set)
	}
	if !set.RefreshExpiresAt.Equal(set.IssuedAt.Add(env.engine.RefreshTTL())) {
		t.Fatal("refresh expiry must be issuedAt + refresh TTL")
	}

	rec := env.record(t, set.RSID)
	if rec.UserID != "u1" || rec.IsRevoked || rec.IsLoggedOut {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.HashedAccessToken != refresh.Fingerprint(set.AccessToken) {
		t.Fatal("record must hold the access token fingerprint")
	}
	if got := env.mr.TTL("rs:" + set.RSID); got != env.engine.RefreshTTL() {
		t.Fatalf("record TTL = %v, want %v", got, env.engine.RefreshTTL())
	}

	// The envelope opens with the stored IV and is a root.
	cipher, err := envelope.NewCipher(testConfig().Envelope.Key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	iv, err := envelope.DecodeIV(rec.IV)
	if err != nil {
		t.Fatalf("decode iv: %v", err)
	}
	chain, err := cipher.OpenChain(set.RefreshToken, iv)
	if err != nil {
		t.Fatalf("open chain: %v", err)
	}
	if !chain.Parent.IsRoot() {
		t.Fatalf("login must issue a root envelope, parent=%q", chain.Parent)
	}
	hasher, _ := password.NewBcrypt(4)
	ok, err := hasher.Verify(chain.RefreshTokenHash, rec.HashedRefreshToken)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify the root fingerprint: ok=%v err=%v", ok, err)
	}
}

func TestLoginClaims(t *testing.T) {
	env := newTestEnv(t, nil)
	set, err := env.engine.Login(context.Background(), "u1", "ctx-9")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := env.engine.Validate(context.Background(), set.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || !claims.IsAdmin || claims.ParentContextID != "ctx-9" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !reflect.DeepEqual(claims.Roles, []string{"editor"}) || !reflect.DeepEqual(claims.Permissions, []string{"posts.write"}) {
		t.Fatalf("unexpected roles/permissions %v %v", claims.Roles, claims.Permissions)
	}

	other := env.login(t, "nobody")
	claims, err = env.engine.Validate(context.Background(), other.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.IsAdmin || len(claims.Roles) != 0 {
		t.Fatalf("user without roles must not be admin: %+v", claims)
	}
}

func TestLoginRequiresUserID(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.engine.Login(context.Background(), "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// Login, refresh, archive the parent, then the parent is spent.
func TestScenarioRefreshThenArchive(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	first := env.login(t, "u1")

	second, err := env.engine.Refresh(ctx, first.RSID, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RSID == first.RSID || second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must issue a new rsid and envelope")
	}
	if second.AccessToken == "" {
		t.Fatal("refresh must mint an access token")
	}

	if rec := env.record(t, first.RSID); rec.IsRevoked {
		t.Fatal("refresh alone must not revoke the parent")
	}

	if err := env.engine.Archive(ctx, first.RSID, first.RefreshToken); err != nil {
		t.Fatalf("archive: %v", err)
	}
	_, err = env.engine.Refresh(ctx, first.RSID, first.RefreshToken)
	if !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("expected ErrTokenAlreadyUsed, got %v", err)
	}
	if Code(err) != CodeTokenAlreadyUsed || HTTPStatus(err) != 403 {
		t.Fatalf("unexpected mapping %s/%d", Code(err), HTTPStatus(err))
	}

	// The child is unaffected by archiving its parent.
	if _, err := env.engine.Refresh(ctx, second.RSID, second.RefreshToken); err != nil {
		t.Fatalf("child refresh: %v", err)
	}
}

// A tampered auth tag fails closed and leaves the record untouched.
func TestScenarioTamperedTag(t *testing.T) {
	env := newTestEnv(t, nil)
	set := env.login(t, "u1")
	before := env.record(t, set.RSID)

	ct, tag, err := envelope.Unpack(set.RefreshToken)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	tag[0] ^= 0x01
	tampered := envelope.Pack(envelope.Sealed{Ciphertext: ct, AuthTag: tag})

	for _, call := range []func() error{
		func() error { _, err := env.engine.Refresh(context.Background(), set.RSID, tampered); return err },
		func() error { return env.engine.Archive(context.Background(), set.RSID, tampered) },
		func() error { return env.engine.Logout(context.Background(), set.RSID, tampered) },
	} {
		if err := call(); !errors.Is(err, ErrInvalidRefresh) {
			t.Fatalf("expected ErrInvalidRefresh, got %v", err)
		}
	}

	after := env.record(t, set.RSID)
	after.TTL, before.TTL = 0, 0
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("record changed on failure:\nbefore %+v\nafter  %+v", before, after)
	}
	if keys := env.mr.Keys(); len(keys) != 1 {
		t.Fatalf("no child may be written on failure, keys=%v", keys)
	}
}

// Logout makes the envelope unusable.
func TestScenarioLogout(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	set := env.login(t, "u1")

	if err := env.engine.Logout(ctx, set.RSID, set.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	rec := env.record(t, set.RSID)
	if !rec.IsLoggedOut || !rec.IsRevoked || rec.LoggedOutAt.IsZero() || rec.RevokedAt.IsZero() {
		t.Fatalf("logout must set both flags: %+v", rec)
	}

	if _, err := env.engine.Refresh(ctx, set.RSID, set.RefreshToken); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("expected ErrTokenAlreadyUsed, got %v", err)
	}
}

func TestRevokedSessionIsTerminal(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	set := env.login(t, "u1")

	if err := env.engine.Archive(ctx, set.RSID, set.RefreshToken); err != nil {
		t.Fatalf("archive: %v", err)
	}
	revokedAt := env.record(t, set.RSID).RevokedAt

	if err := env.engine.Archive(ctx, set.RSID, set.RefreshToken); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("second archive: expected ErrTokenAlreadyUsed, got %v", err)
	}
	if err := env.engine.Logout(ctx, set.RSID, set.RefreshToken); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Fatalf("logout after archive: expected ErrTokenAlreadyUsed, got %v", err)
	}
	rec := env.record(t, set.RSID)
	if rec.IsLoggedOut || !rec.RevokedAt.Equal(revokedAt) {
		t.Fatalf("terminal record must not change: %+v", rec)
	}
}

func TestRootAnchoredChain(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cipher, err := envelope.NewCipher(testConfig().Envelope.Key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	root := env.login(t, "u1")
	rootRec := env.record(t, root.RSID)
	iv, _ := envelope.DecodeIV(rootRec.IV)
	rootChain, err := cipher.OpenChain(root.RefreshToken, iv)
	if err != nil {
		t.Fatalf("open root: %v", err)
	}

	current := root
	for i := 0; i < 5; i++ {
		next, err := env.engine.Refresh(ctx, current.RSID, current.RefreshToken)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		rec := env.record(t, next.RSID)
		if rec.HashedRefreshToken != rootRec.HashedRefreshToken {
			t.Fatalf("generation %d does not carry the root hash", i+1)
		}
		iv, _ := envelope.DecodeIV(rec.IV)
		chain, err := cipher.OpenChain(next.RefreshToken, iv)
		if err != nil {
			t.Fatalf("open generation %d: %v", i+1, err)
		}
		if string(chain.Parent) != rootChain.RefreshTokenHash {
			t.Fatalf("generation %d parent = %q, want root fingerprint", i+1, chain.Parent)
		}
		if chain.VerificationValue() != rootChain.RefreshTokenHash {
			t.Fatalf("generation %d must verify against the root", i+1)
		}
		current = next
	}
}

func TestRefreshFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.login(t, "u1")
	b := env.login(t, "u1")

	cases := []struct {
		name string
		rsid string
		wire string
		want error
	}{
		{"missing rsid", "", a.RefreshToken, ErrValidation},
		{"missing token", a.RSID, "", ErrValidation},
		{"unknown rsid", "does-not-exist", a.RefreshToken, ErrInvalidRefresh},
		{"malformed token", a.RSID, "not-an-envelope", ErrInvalidRefresh},
		{"envelope of another session", a.RSID, b.RefreshToken, ErrInvalidRefresh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.engine.Refresh(ctx, tc.rsid, tc.wire); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRefreshHashMismatchIsUnauthorized(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	set := env.login(t, "u1")

	other, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	foreign, err := other.Hash(refresh.Fingerprint("someone else"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	env.mr.HSet("rs:"+set.RSID, "hashedRefreshToken", foreign)

	_, err = env.engine.Refresh(ctx, set.RSID, set.RefreshToken)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if HTTPStatus(err) != 401 || Code(err) != CodeUnauthorized {
		t.Fatalf("unexpected mapping %s/%d", Code(err), HTTPStatus(err))
	}
}

func TestIncompleteRecordIsInvalid(t *testing.T) {
	for _, field := range []string{"hashedAccessToken", "hashedRefreshToken", "iv"} {
		t.Run(field, func(t *testing.T) {
			env := newTestEnv(t, nil)
			set := env.login(t, "u1")
			key := "rs:" + set.RSID
			env.mr.HDel(key, field)

			_, err := env.engine.Refresh(context.Background(), set.RSID, set.RefreshToken)
			if !errors.Is(err, ErrInvalidRefresh) {
				t.Fatalf("expected ErrInvalidRefresh, got %v", err)
			}
			if Code(err) != CodeInvalidRefresh {
				t.Fatalf("unexpected code %q", Code(err))
			}
			keys, _ := env.rdb.Keys(context.Background(), "rs:*").Result()
			if len(keys) != 1 {
				t.Fatalf("no child may be written on failure, got keys %v", keys)
			}
		})
	}
}

func TestExpiredSessionIsInvalid(t *testing.T) {
	env := newTestEnv(t, nil)
	set := env.login(t, "u1")
	env.mr.FastForward(env.engine.RefreshTTL() + 1)

	if _, err := env.engine.Refresh(context.Background(), set.RSID, set.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}
}

func TestStoreOutageMapsToUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	set := env.login(t, "u1")
	env.mr.Close()

	_, err := env.engine.Refresh(context.Background(), set.RSID, set.RefreshToken)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if HTTPStatus(err) != 503 {
		t.Fatalf("expected 503, got %d", HTTPStatus(err))
	}
	if h := env.engine.Health(context.Background()); h.OK() {
		t.Fatal("health must report the outage")
	}
	if _, err := env.engine.Login(context.Background(), "u1", ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("login: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestArchiveRequiresValidEnvelope(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.login(t, "u1")
	b := env.login(t, "u1")

	if err := env.engine.Archive(context.Background(), a.RSID, b.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}
	if env.record(t, a.RSID).IsRevoked {
		t.Fatal("failed archive must not revoke")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := env.engine.Validate(context.Background(), tok); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", tok, err)
		}
	}
}

func TestPermissionsReadFreshOnEveryMint(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	set := env.login(t, "u1")

	env.source.Assign("u1", nil, nil)
	next, err := env.engine.Refresh(ctx, set.RSID, set.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := env.engine.Validate(ctx, next.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.IsAdmin || len(claims.Roles) != 0 {
		t.Fatalf("refresh must pick up the revoked role: %+v", claims)
	}
}

func TestArgon2Engine(t *testing.T) {
	env := newTestEnv(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Hash.Algorithm = HashArgon2id
		cfg.Hash.Argon2 = password.Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
		b.WithConfig(cfg)
	})
	set := env.login(t, "u1")
	if _, err := env.engine.Refresh(context.Background(), set.RSID, set.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}

func TestNilEngineNotReady(t *testing.T) {
	var e *Engine
	if _, err := e.Login(context.Background(), "u1", ""); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if err := e.Archive(context.Background(), "r", "t"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	e.Close()
}
