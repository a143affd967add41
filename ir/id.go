package ir

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte key, matching the teacher's
// inspector/graph.Hash convention of a static HighwayHash key so that ids
// are a pure function of content across processes and runs (§5 "node and
// edge ids are deterministic functions of content").
var hashKey = []byte("CEIDX0123456789ABCDEF01234567890")

// hash64 computes the HighwayHash-64 digest of data.
func hash64(data []byte) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed 32-byte constant; New64 only errors on bad key length.
		panic(fmt.Sprintf("ir: invalid highwayhash key: %v", err))
	}
	_, _ = h.Write(data)
	return h.Sum64()
}

// encodeID renders a 128-bit id (two 64-bit HighwayHash digests of the whole
// input, the second with a trailing 0xff salt byte) as lowercase hex, per §6 "Node identifiers
// are 128-bit hashes... rendered in a fixed encoding".
func encodeID(parts ...string) string {
	var buf []byte
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, 0x1f) // unit separator, avoids field-boundary collisions
		}
		buf = append(buf, p...)
	}
	lo := hash64(buf)
	hi := hash64(append(buf, 0xff)) // salt the second half so hi != lo for empty/short input
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], hi)
	binary.BigEndian.PutUint64(out[8:], lo)
	return hex.EncodeToString(out)
}

// NodeID computes the stable 128-bit Node identifier: a hash of
// (repo_id, kind, file_path, fqn) per §3/§6. Stability across snapshots is
// what §8 property 1 (Stability) and §8 property 10 (Incremental
// correctness) rely on.
func NodeID(repoID string, kind Kind, filePath, fqn string) string {
	return encodeID(repoID, string(kind), filePath, fqn)
}

// EdgeID computes the stable Edge identifier, additionally including source
// id, target id, and an occurrence ordinal (§6) so that repeated call sites
// between the same (caller, callee) produce distinct, stable ids.
func EdgeID(kind EdgeKind, sourceID, targetID string, occurrence int) string {
	return encodeID(string(kind), sourceID, targetID, fmt.Sprintf("%d", occurrence))
}

// ChunkID renders the repo-stable chunk identifier string specified in §6:
// {repo_id}:{relative_path}:{symbol_fqn}:{start_line}-{end_line}
func ChunkID(repoID, relativePath, symbolFQN string, startLine, endLine int) string {
	return fmt.Sprintf("%s:%s:%s:%d-%d", repoID, relativePath, symbolFQN, startLine, endLine)
}
