package parser

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/internal/ttlcache"
)

// exactKey hashes normalized text the way spec §4.6 step 2 specifies:
// `hash = md5(normalized); exactKey = "parsed:" || hash`.
func exactKey(normalized string) string {
	sum := md5.Sum([]byte(normalized))
	return "parsed:" + hex.EncodeToString(sum[:])
}

type exactCache = ttlcache.Cache[catalog.Intent]
