// Package permissions хранит неизменяемый реестр эндпоинтов API,
// сгруппированных по модулям. Реестр строится один раз при старте из
// таблицы маршрутов и дальше только читается.
package permissions

import (
	"fmt"
	"sort"
)

// Dependency — эндпоинт другого модуля, без которого этот не работает.
type Dependency struct {
	Module   string `json:"module"`
	Endpoint string `json:"endpoint"`
}

// Endpoint описывает один маршрут.
type Endpoint struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Method       string       `json:"method"`
	Path         string       `json:"path"`
	Dependencies []Dependency `json:"dependencies"`
}

// Module — группа эндпоинтов одной коллекции.
type Module struct {
	Module      string     `json:"module"`
	Description string     `json:"description"`
	Endpoints   []Endpoint `json:"endpoints"`
}

// Registry — неизменяемый реестр. Безопасен для конкурентного чтения.
type Registry struct {
	modules []Module
	index   map[string]Endpoint
}

// Builder собирает реестр. Не потокобезопасен.
type Builder struct {
	order   []string
	modules map[string]*Module
	seen    map[string]bool
	err     error
}

// NewBuilder создаёт пустой Builder.
func NewBuilder() *Builder {
	return &Builder{
		modules: make(map[string]*Module),
		seen:    make(map[string]bool),
	}
}

// Describe задаёт описание модуля.
func (b *Builder) Describe(module, description string) *Builder {
	b.module(module).Description = description
	return b
}

// Add добавляет эндпоинт в модуль. Повтор пары method+path делает сборку ошибочной.
func (b *Builder) Add(module string, ep Endpoint) *Builder {
	key := ep.Method + " " + ep.Path
	if b.seen[key] {
		if b.err == nil {
			b.err = fmt.Errorf("permissions: duplicate endpoint %s", key)
		}
		return b
	}
	b.seen[key] = true

	m := b.module(module)
	m.Endpoints = append(m.Endpoints, cloneEndpoint(ep))
	return b
}

func (b *Builder) module(name string) *Module {
	m, ok := b.modules[name]
	if !ok {
		m = &Module{Module: name}
		b.modules[name] = m
		b.order = append(b.order, name)
	}
	return m
}

// Build проверяет зависимости и возвращает реестр. Каждая зависимость
// должна ссылаться на зарегистрированный эндпоинт.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	names := make(map[string]bool)
	for _, m := range b.modules {
		for _, ep := range m.Endpoints {
			names[m.Module+"/"+ep.Name] = true
		}
	}

	r := &Registry{index: make(map[string]Endpoint)}
	for _, name := range b.order {
		m := b.modules[name]
		for _, ep := range m.Endpoints {
			for _, d := range ep.Dependencies {
				if !names[d.Module+"/"+d.Endpoint] {
					return nil, fmt.Errorf("permissions: %s/%s depends on unknown endpoint %s/%s",
						m.Module, ep.Name, d.Module, d.Endpoint)
				}
			}
			r.index[ep.Method+" "+ep.Path] = cloneEndpoint(ep)
		}
		r.modules = append(r.modules, cloneModule(*m))
	}
	sort.SliceStable(r.modules, func(i, j int) bool { return r.modules[i].Module < r.modules[j].Module })
	return r, nil
}

// Modules возвращает копию реестра, упорядоченную по имени модуля.
func (r *Registry) Modules() []Module {
	out := make([]Module, len(r.modules))
	for i, m := range r.modules {
		out[i] = cloneModule(m)
	}
	return out
}

// Lookup ищет эндпоинт по методу и шаблону пути.
func (r *Registry) Lookup(method, path string) (Endpoint, bool) {
	ep, ok := r.index[method+" "+path]
	if !ok {
		return Endpoint{}, false
	}
	return cloneEndpoint(ep), true
}

func cloneModule(m Module) Module {
	eps := make([]Endpoint, len(m.Endpoints))
	for i, ep := range m.Endpoints {
		eps[i] = cloneEndpoint(ep)
	}
	m.Endpoints = eps
	return m
}

func cloneEndpoint(ep Endpoint) Endpoint {
	deps := make([]Dependency, len(ep.Dependencies))
	copy(deps, ep.Dependencies)
	ep.Dependencies = deps
	return ep
}
