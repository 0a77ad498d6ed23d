package mqtt

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue is a paho client scoped to a topic prefix. Handlers subscribe
// with filters relative to the prefix and share one broker subscription
// per filter.
type Queue struct {
	Client      paho.Client
	TopicPrefix string
	// OnConnect is called after each (re)connect, once filters are
	// subscribed again.
	OnConnect func(*Queue)

	lock   sync.RWMutex
	routes routeTable
}

// Subscription is a handler attached to a filter.
type Subscription struct {
	// Token is the broker subscription, nil when the filter was already
	// subscribed.
	Token paho.Token

	queue   *Queue
	filter  string
	handler Handler
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.connected)
	options.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("mqtt connection lost: %v", err)
	})
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from a broker URL, see ClientOptionsFromURL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, topicPrefix), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub attaches handler to a filter, which may contain wildcards.
func (q *Queue) Sub(filter string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, filter: filter, handler: handler}
	q.lock.Lock()
	first := q.routes.add(sub)
	q.lock.Unlock()
	if first {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+filter, 0, q.receive)
	}
	return sub
}

// Pub publishes to a topic with QoS 0.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

func (q *Queue) connected(paho.Client) {
	q.lock.RLock()
	filters := make(map[string]byte, len(q.routes))
	for filter := range q.routes {
		filters[q.TopicPrefix+filter] = 0
	}
	q.lock.RUnlock()
	glog.Infof("mqtt connected, %d filters", len(filters))
	if len(filters) > 0 {
		q.Client.SubscribeMultiple(filters, q.receive)
	}
	if fn := q.OnConnect; fn != nil {
		fn(q)
	}
}

func (q *Queue) receive(_ paho.Client, msg paho.Message) {
	topic, ok := q.relative(msg.Topic())
	if !ok {
		return
	}
	glog.V(2).Infof("RCV %q", msg.Topic())
	q.lock.RLock()
	handlers := q.routes.match(topic)
	q.lock.RUnlock()
	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}

func (q *Queue) relative(topic string) (string, bool) {
	if len(topic) < len(q.TopicPrefix) || topic[:len(q.TopicPrefix)] != q.TopicPrefix {
		return "", false
	}
	return topic[len(q.TopicPrefix):], true
}

// Close detaches the handler, the broker subscription is dropped with the
// last handler of the filter.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	last := q.routes.remove(s)
	q.lock.Unlock()
	if !last {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.filter)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.filter)
	token.Wait()
	return token.Error()
}

// routeTable maps filters to their subscriptions in subscribe order.
type routeTable map[string][]*Subscription

func (t *routeTable) add(sub *Subscription) bool {
	if *t == nil {
		*t = make(routeTable)
	}
	subs := (*t)[sub.filter]
	(*t)[sub.filter] = append(subs, sub)
	return len(subs) == 0
}

func (t routeTable) remove(sub *Subscription) bool {
	subs, found := t[sub.filter], false
	for n, s := range subs {
		if s == sub {
			subs, found = append(subs[:n:n], subs[n+1:]...), true
			break
		}
	}
	if !found {
		return false
	}
	if len(subs) == 0 {
		delete(t, sub.filter)
		return true
	}
	t[sub.filter] = subs
	return false
}

func (t routeTable) match(topic string) (handlers []Handler) {
	for filter, subs := range t {
		if !MatchTopic(topic, filter) {
			continue
		}
		for _, s := range subs {
			handlers = append(handlers, s.handler)
		}
	}
	return
}
