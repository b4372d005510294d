package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PANDAWA_TEST_MODE") == "" {
			_ = os.Setenv("PANDAWA_TEST_MODE", "1")
		}
	})
}
