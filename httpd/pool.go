package httpd

// DefaultMaxConns 是未配置时的槽位数
const DefaultMaxConns = 10

// pool 是固定长度的槽位数组，创建后不再增减，线性扫描即可
type pool struct {
	slots []conn
}

func newPool(n int) *pool {
	p := &pool{slots: make([]conn, n)}
	for i := range p.slots {
		p.slots[i].slot = i
	}
	return p
}

// acquire 返回下标最小的空闲槽位，全部占用时返回nil
func (p *pool) acquire() *conn {
	for i := range p.slots {
		if !p.slots[i].valid() {
			return &p.slots[i]
		}
	}
	return nil
}

// each 按下标顺序对每个有效槽位调用fn，这也是处理连接的顺序
func (p *pool) each(fn func(c *conn)) {
	for i := range p.slots {
		if p.slots[i].valid() {
			fn(&p.slots[i])
		}
	}
}

func (p *pool) active() int {
	n := 0
	p.each(func(*conn) { n++ })
	return n
}

func (p *pool) capacity() int {
	return len(p.slots)
}
