package theater

// シアターが所有するグラフィックスリソースの台帳。生成した所有者だけが
// 解放する規約で、解放は取得の逆順に行います。

// Resource は解放可能なグラフィックスリソースです。
type Resource interface {
	Release()
	Released() bool
}

// TrackedResource は解放回数を記録するリソース実装です。
// 二重解放の検出はテストがReleaseCountで行います。
type TrackedResource struct {
	name     string
	releases int
}

// NewTrackedResource は名前付きリソースを生成します。
func NewTrackedResource(name string) *TrackedResource {
	return &TrackedResource{name: name}
}

// Name はリソース名を返します。
func (r *TrackedResource) Name() string { return r.name }

// Release はリソースを解放します。
func (r *TrackedResource) Release() { r.releases++ }

// Released は解放済みかを返します。
func (r *TrackedResource) Released() bool { return r.releases > 0 }

// ReleaseCount は解放が呼ばれた回数を返します。所有規約下では常に1のはずです。
func (r *TrackedResource) ReleaseCount() int { return r.releases }

// Texture は投影テクスチャです。元サーフェスの更新でdirtyになります。
type Texture struct {
	TrackedResource
	dirty bool
}

// NewTexture はテクスチャリソースを生成します。
func NewTexture(name string) *Texture {
	return &Texture{TrackedResource: TrackedResource{name: name}}
}

// MarkDirty は元サーフェスが変化したことを記録します。
func (t *Texture) MarkDirty() { t.dirty = true }

// ConsumeDirty はdirtyフラグを読み取ってクリアします。
func (t *Texture) ConsumeDirty() bool {
	dirty := t.dirty
	t.dirty = false
	return dirty
}

// resourceList は取得順を保持し、逆順で一括解放する所有リストです。
type resourceList struct {
	items []Resource
}

func (l *resourceList) track(resource Resource) Resource {
	l.items = append(l.items, resource)
	return resource
}

func (l *resourceList) trackTexture(name string) *Texture {
	texture := NewTexture(name)
	l.track(texture)
	return texture
}

func (l *resourceList) trackNamed(name string) *TrackedResource {
	resource := NewTrackedResource(name)
	l.track(resource)
	return resource
}

// releaseAll は逆順に全リソースを解放してリストを空にします。
func (l *resourceList) releaseAll() {
	for i := len(l.items) - 1; i >= 0; i-- {
		l.items[i].Release()
	}
	l.items = nil
}

func (l *resourceList) snapshot() []Resource {
	items := make([]Resource, len(l.items))
	copy(items, l.items)
	return items
}
