package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/okurt/santral/internal/engine"
)

// lightweight per-user secret store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text SIP credentials.

const fileName = "accounts.json"

// Store persists provisioned SIP accounts keyed by account ref (the portal
// email). Dir overrides the default config directory, for tests.
type Store struct {
	Dir string
}

type secretFile struct {
	Accounts map[string]string `json:"accounts"` // ref -> base64(ciphertext of account JSON)
}

// SaveAccount stores one provisioned account, replacing any previous entry
// for the same ref.
func (s *Store) SaveAccount(acct engine.Account) error {
	ref := norm(acct.Ref)
	if ref == "" {
		return fmt.Errorf("account ref required")
	}
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, _ := load(path)
	if sf.Accounts == nil {
		sf.Accounts = map[string]string{}
	}
	plain, err := json.Marshal(acct)
	if err != nil {
		return err
	}
	ct, err := encrypt(plain)
	if err != nil {
		return err
	}
	sf.Accounts[ref] = base64.StdEncoding.EncodeToString(ct)
	return save(path, sf)
}

// FetchAccount loads a stored account by ref.
func (s *Store) FetchAccount(ref string) (engine.Account, error) {
	if ref = norm(ref); ref == "" {
		return engine.Account{}, fmt.Errorf("account ref required")
	}
	path, err := s.filePath()
	if err != nil {
		return engine.Account{}, err
	}
	sf, err := load(path)
	if err != nil {
		return engine.Account{}, err
	}
	enc, ok := sf.Accounts[ref]
	if !ok {
		return engine.Account{}, fmt.Errorf("account not found")
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return engine.Account{}, err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return engine.Account{}, err
	}
	var acct engine.Account
	if err := json.Unmarshal(pt, &acct); err != nil {
		return engine.Account{}, err
	}
	return acct, nil
}

// Refs lists stored account refs.
func (s *Store) Refs() ([]string, error) {
	path, err := s.filePath()
	if err != nil {
		return nil, err
	}
	sf, err := load(path)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(sf.Accounts))
	for ref := range sf.Accounts {
		refs = append(refs, ref)
	}
	return refs, nil
}

// DeleteAccount removes a stored account. Idempotent.
func (s *Store) DeleteAccount(ref string) error {
	if ref = norm(ref); ref == "" {
		return fmt.Errorf("account ref required")
	}
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	delete(sf.Accounts, ref)
	return save(path, sf)
}

func (s *Store) filePath() (string, error) {
	dir := s.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "santral")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() ([]byte, error) {
	user := os.Getenv("USER")
	base := fmt.Sprintf("santral-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:], nil
}

func encrypt(plain []byte) ([]byte, error) {
	key, err := masterKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	key, err := masterKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
