package ssdb

import (
	"context"
	"strconv"
	"time"

	"github.com/shelocks/ssdb/proto"
)

// Entry is one key/value pair from a scan or multi_get reply, in server
// iteration order.
type Entry = proto.Entry

// ScoreEntry is one key/score pair from a sorted-set reply.
type ScoreEntry struct {
	Key   string
	Score int64
}

// SSDB range arguments follow the server convention: an empty string bound
// means "no limit". Key ranges are (start, end]: the start key is excluded,
// the end key included.

// ---- key/value ----

// Get retrieves the value of key. The second return is false when the key
// does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "get", key)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "set", key, value)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// SetX stores value under key with a time-to-live. The server expires the
// key after ttl (second resolution).
func (c *Client) SetX(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "setx", key, value, int64(ttl.Seconds()))
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// Del removes key. Deleting a missing key is not an error.
func (c *Client) Del(ctx context.Context, key string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "del", key)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// Exists reports whether key exists.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.Do(ctx, proto.ShapeBool, "exists", key)
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

// Incr adds delta to the number stored at key and returns the new value.
// A missing key is treated as 0.
func (c *Client) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "incr", key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// Decr subtracts delta from the number stored at key and returns the new
// value.
func (c *Client) Decr(ctx context.Context, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "decr", key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// Keys lists up to limit keys in the range (start, end].
func (c *Client) Keys(ctx context.Context, start, end string, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "keys", start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// Scan lists up to limit key/value pairs in the key range (start, end].
func (c *Client) Scan(ctx context.Context, start, end string, limit int) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "scan", start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.Pairs, nil
}

// RScan is Scan in reverse order: pairs in (start, end] walking downwards.
func (c *Client) RScan(ctx context.Context, start, end string, limit int) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "rscan", start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.Pairs, nil
}

// MultiSet stores all pairs in one round-trip.
func (c *Client) MultiSet(ctx context.Context, pairs map[string]string) error {
	args := make([]any, 0, len(pairs)*2)
	for k, v := range pairs {
		args = append(args, k, v)
	}
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_set", args...)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// MultiGet retrieves the given keys in one round-trip. Missing keys are
// absent from the result; present keys keep request order.
func (c *Client) MultiGet(ctx context.Context, keys ...string) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "multi_get", stringArgs(keys)...)
	if err != nil {
		return nil, err
	}
	c.stats.recordGet(len(result.Pairs) > 0)
	return result.Pairs, nil
}

// MultiDel removes the given keys in one round-trip.
func (c *Client) MultiDel(ctx context.Context, keys ...string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_del", stringArgs(keys)...)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// ---- hashmaps ----

// HSet stores value under key in the hashmap name.
func (c *Client) HSet(ctx context.Context, name, key, value string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "hset", name, key, value)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// HGet retrieves the value of key in the hashmap name.
func (c *Client) HGet(ctx context.Context, name, key string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "hget", name, key)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// HDel removes key from the hashmap name.
func (c *Client) HDel(ctx context.Context, name, key string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "hdel", name, key)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// HExists reports whether key exists in the hashmap name.
func (c *Client) HExists(ctx context.Context, name, key string) (bool, error) {
	result, err := c.Do(ctx, proto.ShapeBool, "hexists", name, key)
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

// HIncr adds delta to the number stored at key in the hashmap name.
func (c *Client) HIncr(ctx context.Context, name, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "hincr", name, key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// HDecr subtracts delta from the number stored at key in the hashmap name.
func (c *Client) HDecr(ctx context.Context, name, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "hdecr", name, key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// HSize returns the number of keys in the hashmap name.
func (c *Client) HSize(ctx context.Context, name string) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "hsize", name)
	if err != nil {
		return 0, err
	}
	return result.Int, nil
}

// HList lists up to limit hashmap names in the range (start, end].
func (c *Client) HList(ctx context.Context, start, end string, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "hlist", start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// HKeys lists up to limit keys of the hashmap name in the range (start, end].
func (c *Client) HKeys(ctx context.Context, name, start, end string, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "hkeys", name, start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// HScan lists up to limit key/value pairs of the hashmap name in the key
// range (start, end].
func (c *Client) HScan(ctx context.Context, name, start, end string, limit int) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "hscan", name, start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.Pairs, nil
}

// HRScan is HScan in reverse order.
func (c *Client) HRScan(ctx context.Context, name, start, end string, limit int) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "hrscan", name, start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.Pairs, nil
}

// MultiHSet stores all pairs in the hashmap name in one round-trip.
func (c *Client) MultiHSet(ctx context.Context, name string, pairs map[string]string) error {
	args := make([]any, 0, len(pairs)*2+1)
	args = append(args, name)
	for k, v := range pairs {
		args = append(args, k, v)
	}
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_hset", args...)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// MultiHGet retrieves the given keys of the hashmap name in one round-trip.
func (c *Client) MultiHGet(ctx context.Context, name string, keys ...string) ([]Entry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "multi_hget", stringArgs(keys, name)...)
	if err != nil {
		return nil, err
	}
	c.stats.recordGet(len(result.Pairs) > 0)
	return result.Pairs, nil
}

// MultiHDel removes the given keys from the hashmap name in one round-trip.
func (c *Client) MultiHDel(ctx context.Context, name string, keys ...string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_hdel", stringArgs(keys, name)...)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// ---- sorted sets ----

// ZSet sets the score of key in the sorted set name.
func (c *Client) ZSet(ctx context.Context, name, key string, score int64) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "zset", name, key, score)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// ZGet retrieves the score of key in the sorted set name. The second return
// is false when the key is not a member.
func (c *Client) ZGet(ctx context.Context, name, key string) (int64, bool, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zget", name, key)
	if err != nil {
		return 0, false, err
	}
	c.stats.recordGet(result.Found)
	return result.Int, result.Found, nil
}

// ZDel removes key from the sorted set name.
func (c *Client) ZDel(ctx context.Context, name, key string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "zdel", name, key)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// ZExists reports whether key is a member of the sorted set name.
func (c *Client) ZExists(ctx context.Context, name, key string) (bool, error) {
	result, err := c.Do(ctx, proto.ShapeBool, "zexists", name, key)
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

// ZIncr adds delta to the score of key in the sorted set name and returns
// the new score.
func (c *Client) ZIncr(ctx context.Context, name, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zincr", name, key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// ZDecr subtracts delta from the score of key in the sorted set name and
// returns the new score.
func (c *Client) ZDecr(ctx context.Context, name, key string, delta int64) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zdecr", name, key, delta)
	if err != nil {
		return 0, err
	}
	c.stats.recordIncr()
	return result.Int, nil
}

// ZSize returns the number of members in the sorted set name.
func (c *Client) ZSize(ctx context.Context, name string) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zsize", name)
	if err != nil {
		return 0, err
	}
	return result.Int, nil
}

// ZList lists up to limit sorted-set names in the range (start, end].
func (c *Client) ZList(ctx context.Context, start, end string, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "zlist", start, end, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// ZKeys lists up to limit member keys of the sorted set name, resuming after
// (keyStart, scoreStart) and stopping at scoreEnd. Empty score bounds mean
// unbounded.
func (c *Client) ZKeys(ctx context.Context, name, keyStart, scoreStart, scoreEnd string, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "zkeys", name, keyStart, scoreStart, scoreEnd, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// ZScan lists up to limit key/score pairs of the sorted set name in
// ascending score order, resuming after (keyStart, scoreStart) and stopping
// at scoreEnd. Empty score bounds mean unbounded.
func (c *Client) ZScan(ctx context.Context, name, keyStart, scoreStart, scoreEnd string, limit int) ([]ScoreEntry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "zscan", name, keyStart, scoreStart, scoreEnd, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return toScoreEntries(result.Pairs)
}

// ZRScan is ZScan in descending score order.
func (c *Client) ZRScan(ctx context.Context, name, keyStart, scoreStart, scoreEnd string, limit int) ([]ScoreEntry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "zrscan", name, keyStart, scoreStart, scoreEnd, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return toScoreEntries(result.Pairs)
}

// ZRank returns the ascending rank of key in the sorted set name. The second
// return is false when the key is not a member.
func (c *Client) ZRank(ctx context.Context, name, key string) (int64, bool, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zrank", name, key)
	if err != nil {
		return 0, false, err
	}
	return result.Int, result.Found, nil
}

// ZRRank returns the descending rank of key in the sorted set name.
func (c *Client) ZRRank(ctx context.Context, name, key string) (int64, bool, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "zrrank", name, key)
	if err != nil {
		return 0, false, err
	}
	return result.Int, result.Found, nil
}

// ZRange returns limit key/score pairs of the sorted set name starting at
// the given ascending rank offset.
func (c *Client) ZRange(ctx context.Context, name string, offset, limit int) ([]ScoreEntry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "zrange", name, offset, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return toScoreEntries(result.Pairs)
}

// ZRRange is ZRange in descending rank order.
func (c *Client) ZRRange(ctx context.Context, name string, offset, limit int) ([]ScoreEntry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "zrrange", name, offset, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return toScoreEntries(result.Pairs)
}

// MultiZSet sets all key/score pairs in the sorted set name in one
// round-trip.
func (c *Client) MultiZSet(ctx context.Context, name string, pairs map[string]int64) error {
	args := make([]any, 0, len(pairs)*2+1)
	args = append(args, name)
	for k, score := range pairs {
		args = append(args, k, score)
	}
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_zset", args...)
	if err != nil {
		return err
	}
	c.stats.recordSet()
	return nil
}

// MultiZGet retrieves the scores of the given keys in the sorted set name.
// Missing keys are absent from the result.
func (c *Client) MultiZGet(ctx context.Context, name string, keys ...string) ([]ScoreEntry, error) {
	result, err := c.Do(ctx, proto.ShapePairs, "multi_zget", stringArgs(keys, name)...)
	if err != nil {
		return nil, err
	}
	c.stats.recordGet(len(result.Pairs) > 0)
	return toScoreEntries(result.Pairs)
}

// MultiZDel removes the given keys from the sorted set name in one
// round-trip.
func (c *Client) MultiZDel(ctx context.Context, name string, keys ...string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "multi_zdel", stringArgs(keys, name)...)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// ---- queues ----

// QPushBack appends values to the tail of the queue name and returns the new
// queue length.
func (c *Client) QPushBack(ctx context.Context, name string, values ...string) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "qpush_back", stringArgs(values, name)...)
	if err != nil {
		return 0, err
	}
	c.stats.recordSet()
	return result.Int, nil
}

// QPushFront prepends values to the head of the queue name and returns the
// new queue length.
func (c *Client) QPushFront(ctx context.Context, name string, values ...string) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "qpush_front", stringArgs(values, name)...)
	if err != nil {
		return 0, err
	}
	c.stats.recordSet()
	return result.Int, nil
}

// QPopFront removes and returns the head of the queue name. The second
// return is false when the queue is empty.
func (c *Client) QPopFront(ctx context.Context, name string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "qpop_front", name)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// QPopBack removes and returns the tail of the queue name.
func (c *Client) QPopBack(ctx context.Context, name string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "qpop_back", name)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// QFront returns the head of the queue name without removing it.
func (c *Client) QFront(ctx context.Context, name string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "qfront", name)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// QBack returns the tail of the queue name without removing it.
func (c *Client) QBack(ctx context.Context, name string) (string, bool, error) {
	result, err := c.Do(ctx, proto.ShapeScalar, "qback", name)
	if err != nil {
		return "", false, err
	}
	c.stats.recordGet(result.Found)
	return result.Str, result.Found, nil
}

// QSize returns the length of the queue name.
func (c *Client) QSize(ctx context.Context, name string) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "qsize", name)
	if err != nil {
		return 0, err
	}
	return result.Int, nil
}

// QClear removes all items from the queue name.
func (c *Client) QClear(ctx context.Context, name string) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "qclear", name)
	if err != nil {
		return err
	}
	c.stats.recordDelete()
	return nil
}

// QRange returns limit items of the queue name starting at offset.
func (c *Client) QRange(ctx context.Context, name string, offset, limit int) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "qrange", name, offset, limit)
	if err != nil {
		return nil, err
	}
	c.stats.recordScan()
	return result.List, nil
}

// ---- server ----

// Ping checks that the server answers on this client's connection pool.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, proto.ShapeStatusOnly, "ping")
	return err
}

// DBSize returns the server's approximate data size in bytes.
func (c *Client) DBSize(ctx context.Context) (int64, error) {
	result, err := c.Do(ctx, proto.ShapeInt, "dbsize")
	if err != nil {
		return 0, err
	}
	return result.Int, nil
}

// Info returns the server's info report as raw fields.
func (c *Client) Info(ctx context.Context) ([]string, error) {
	result, err := c.Do(ctx, proto.ShapeList, "info")
	if err != nil {
		return nil, err
	}
	return result.List, nil
}

// stringArgs converts a string slice to command arguments, with optional
// leading fixed arguments.
func stringArgs(values []string, leading ...string) []any {
	args := make([]any, 0, len(leading)+len(values))
	for _, l := range leading {
		args = append(args, l)
	}
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

// toScoreEntries parses the integer scores of a pairs reply.
func toScoreEntries(pairs []Entry) ([]ScoreEntry, error) {
	entries := make([]ScoreEntry, len(pairs))
	for i, p := range pairs {
		score, err := strconv.ParseInt(p.Value, 10, 64)
		if err != nil {
			return nil, &proto.DecodeError{Message: "score not an integer: " + strconv.Quote(p.Value), Err: err}
		}
		entries[i] = ScoreEntry{Key: p.Key, Score: score}
	}
	return entries, nil
}
