package httpd

import "strings"

// Pair 是查询串中的一个键值对
type Pair struct {
	Key   string
	Value string
}

// URI 是拆成路径和查询串的请求目标
type URI struct {
	Raw      string
	Path     string
	RawQuery string
	// 按出现顺序保存，重复的键分别保留
	Query []Pair
}

// ParseURI 在第一个'?'处把raw拆成路径和查询串，再把查询串拆成键值对。
// 不会失败，也不做百分号解码
func ParseURI(raw string) URI {
	u := URI{Raw: raw, Path: raw}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		u.Path = raw[:i]
		u.RawQuery = raw[i+1:]
	}
	u.Query = ParseQuery(u.RawQuery)
	return u
}

// ParseQuery 按'&'切分rawQuery，每一段在第一个'='处拆成键和值，没有'='的段丢弃
//
//	a=1&b=2&a=3 -> [(a,1) (b,2) (a,3)]
//	x&y=2       -> [(y,2)]
func ParseQuery(rawQuery string) []Pair {
	if rawQuery == "" {
		return nil
	}
	var pairs []Pair
	for _, v := range strings.Split(rawQuery, "&") {
		index := strings.IndexByte(v, '=')
		if index == -1 {
			continue
		}
		pairs = append(pairs, Pair{Key: v[:index], Value: v[index+1:]})
	}
	return pairs
}
