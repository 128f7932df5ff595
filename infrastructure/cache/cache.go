package cache

import (
	"bytes"
	"fmt"
	"net/url"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	bucketResponses = []byte("responses")
)

// ResponseCache guarda respostas de leitura da API por uma janela de validade.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	PurgePrefix(prefix string) (int, error)
	Purge() (int, error)
	Close() error
}

// Key monta a chave a partir do perfil, do caminho e da query ordenada.
func Key(profileID, path string, query url.Values) string {
	key := profileID + "|" + path
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}
	return key
}

// PathPrefix é o prefixo de todas as chaves de um caminho, com qualquer query.
func PathPrefix(profileID, path string) string {
	return profileID + "|" + path
}

type entry struct {
	Value     []byte    `json:"value"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BoltCache persiste as entradas em um arquivo bbolt e sobrevive entre execuções.
type BoltCache struct {
	db  *bolt.DB
	now func() time.Time

	mu     sync.Mutex
	hits   int64
	misses int64
}

// Open abre (ou cria) o arquivo de cache.
func Open(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("abrindo cache %s: %w", path, err)
	}

	c, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New cria o cache sobre um banco já aberto.
func New(db *bolt.DB) (*BoltCache, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao criar bucket do cache: %w", err)
	}

	return &BoltCache{db: db, now: time.Now}, nil
}

// OpenOrNop tenta abrir o cache em disco e, se falhar, segue sem cache.
func OpenOrNop(path string, enabled bool) ResponseCache {
	if !enabled || path == "" {
		return NopCache{}
	}

	c, err := Open(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("cache: indisponível, seguindo sem cache")
		return NopCache{}
	}
	return c
}

// Get retorna o valor se existir e ainda estiver válido. Entradas vencidas
// ou corrompidas são removidas e tratadas como ausentes.
func (c *BoltCache) Get(key string) ([]byte, bool) {
	var (
		found   entry
		ok      bool
		discard bool
	)

	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketResponses).Get([]byte(key))
		if raw == nil {
			return nil
		}

		if err := json.Unmarshal(raw, &found); err != nil {
			discard = true
			return nil
		}

		if !c.now().Before(found.ExpiresAt) {
			discard = true
			return nil
		}

		ok = true
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache: falha na leitura")
		ok = false
	}

	if discard {
		c.delete(key)
	}

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !ok {
		return nil, false
	}
	return found.Value, true
}

func (c *BoltCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	now := c.now()
	raw, err := json.Marshal(entry{Value: value, StoredAt: now, ExpiresAt: now.Add(ttl)})
	if err != nil {
		return fmt.Errorf("serializando entrada de cache: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), raw)
	})
}

// PurgePrefix remove todas as entradas cujo nome começa com prefix.
func (c *BoltCache) PurgePrefix(prefix string) (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)
		p := []byte(prefix)

		var keys [][]byte
		cursor := b.Cursor()
		for k, _ := cursor.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = cursor.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(keys)
		return nil
	})
	return removed, err
}

func (c *BoltCache) Purge() (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketResponses).ForEach(func(_, _ []byte) error {
			removed++
			return nil
		})
		if err != nil {
			return err
		}
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return err
		}
		_, err = tx.CreateBucket(bucketResponses)
		return err
	})
	return removed, err
}

// Stats retorna acertos e falhas desde a abertura.
func (c *BoltCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}

func (c *BoltCache) delete(key string) {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Delete([]byte(key))
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Debug("cache: falha ao remover entrada vencida")
	}
}

// NopCache nunca encontra nada. Usado quando o cache está desligado.
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool)               { return nil, false }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) PurgePrefix(string) (int, error)         { return 0, nil }
func (NopCache) Purge() (int, error)                     { return 0, nil }
func (NopCache) Close() error                            { return nil }
