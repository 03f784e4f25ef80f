package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

const mbBytes = 1 << 20

// dataURLPattern data URL 的最小匹配：data:<mime>;base64,<payload>.
var dataURLPattern = regexp.MustCompile(`^data:(.*?);base64,(.*)$`)

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// newWorkID 生成按时间可排序的作品 ID.
func newWorkID(t time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String()
}

// parseDataURL 解析 data URL，返回解码后的字节与 MIME 类型.
func parseDataURL(s string) ([]byte, string, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, "", fmt.Errorf("invalid data url")
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}

	return data, m[1], nil
}

// extFromMime 从 MIME 类型推断文件后缀：取 "/" 之后的部分并去掉
// "+" 扩展（svg+xml -> svg），无法推断时用 bin.
func extFromMime(mime string) string {
	_, sub, ok := strings.Cut(mime, "/")
	if !ok || sub == "" {
		return "bin"
	}

	if base, _, found := strings.Cut(sub, "+"); found {
		sub = base
	}

	if sub == "" {
		return "bin"
	}

	return sub
}

// ceilMB 字节数向上取整到 MB，零字节为 0.
func ceilMB(n int) int {
	if n <= 0 {
		return 0
	}

	return (n + mbBytes - 1) / mbBytes
}

// mediaObjectKey 图片对象键：<workID>/<毫秒时间戳>-<序号>.<后缀>.
func mediaObjectKey(workID string, t time.Time, ordinal int, ext string) string {
	return fmt.Sprintf("%s/%d-%d.%s", workID, t.UnixMilli(), ordinal, ext)
}
