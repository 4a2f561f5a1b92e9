package store

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// ConfigMapDataKey is the key holding the configuration document in the ConfigMap.
const ConfigMapDataKey = "config.yaml"

// ConfigMapStore keeps the configuration in a ConfigMap.
type ConfigMapStore struct {
	Client client.Client
	// UncachedClient reads the ConfigMap when set. Reading through a cache may
	// return a configuration older than the last save.
	UncachedClient client.Reader
	Key            types.NamespacedName
}

func NewConfigMapStore(c client.Client, namespace, name string) *ConfigMapStore {
	return &ConfigMapStore{
		Client: c,
		Key:    types.NamespacedName{Namespace: namespace, Name: name},
	}
}

func (s *ConfigMapStore) reader() client.Reader {
	if s.UncachedClient != nil {
		return s.UncachedClient
	}
	return s.Client
}

// Load reads the configuration. A missing ConfigMap yields an empty configuration.
func (s *ConfigMapStore) Load(ctx context.Context) (*v1.ResourceManagerConfig, error) {
	cm := &corev1.ConfigMap{}
	if err := s.reader().Get(ctx, s.Key, cm); err != nil {
		if apierrors.IsNotFound(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("unable to get configmap %s: %w", s.Key, err)
	}
	return DecodeConfigMap(cm)
}

// Save writes the configuration, creating the ConfigMap when it does not exist.
func (s *ConfigMapStore) Save(ctx context.Context, config *v1.ResourceManagerConfig) error {
	data, err := Encode(config)
	if err != nil {
		return err
	}

	cm := &corev1.ConfigMap{}
	err = s.reader().Get(ctx, s.Key, cm)
	switch {
	case apierrors.IsNotFound(err):
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Namespace: s.Key.Namespace,
				Name:      s.Key.Name,
			},
			Data: map[string]string{ConfigMapDataKey: string(data)},
		}
		if err := s.Client.Create(ctx, cm); err != nil {
			return fmt.Errorf("unable to create configmap %s: %w", s.Key, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("unable to get configmap %s: %w", s.Key, err)
	}

	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[ConfigMapDataKey] = string(data)
	if err := s.Client.Update(ctx, cm); err != nil {
		return fmt.Errorf("unable to update configmap %s: %w", s.Key, err)
	}
	return nil
}

// DecodeConfigMap parses the configuration held by the ConfigMap.
func DecodeConfigMap(cm *corev1.ConfigMap) (*v1.ResourceManagerConfig, error) {
	data, ok := cm.Data[ConfigMapDataKey]
	if !ok {
		return NewConfig(), nil
	}
	config, err := Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("configmap %s/%s: %w", cm.Namespace, cm.Name, err)
	}
	return config, nil
}
