package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryCacheSuite struct {
	suite.Suite
	ctx context.Context
}

func TestInMemoryCache(t *testing.T) {
	suite.Run(t, new(InMemoryCacheSuite))
}

func (s *InMemoryCacheSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *InMemoryCacheSuite) TestSetGetDelete() {
	c := NewInMemoryCache(true)
	key := GenerateKey(PrefixFund, "Building Fund")

	c.Set(s.ctx, key, "gau_1", NoExpiration)
	v, ok := c.Get(s.ctx, key)
	s.True(ok)
	s.Equal("gau_1", v)

	c.Delete(s.ctx, key)
	_, ok = c.Get(s.ctx, key)
	s.False(ok)
}

func (s *InMemoryCacheSuite) TestDeleteByPrefix() {
	c := NewInMemoryCache(true)
	c.Set(s.ctx, GenerateKey(PrefixFund, "a"), 1, NoExpiration)
	c.Set(s.ctx, GenerateKey(PrefixFund, "b"), 2, NoExpiration)
	c.Set(s.ctx, GenerateKey(PrefixFieldMapping, "current"), 3, NoExpiration)

	c.DeleteByPrefix(s.ctx, PrefixFund)

	s.Equal(1, c.Len())
	_, ok := c.Get(s.ctx, GenerateKey(PrefixFieldMapping, "current"))
	s.True(ok)
}

func (s *InMemoryCacheSuite) TestDisabledCacheAlwaysMisses() {
	c := NewInMemoryCache(false)
	c.Set(s.ctx, "k", "v", NoExpiration)

	_, ok := c.Get(s.ctx, "k")
	s.False(ok)
}

func (s *InMemoryCacheSuite) TestGenerateKey() {
	s.Equal("fund:v1::Building Fund", GenerateKey(PrefixFund, "Building Fund"))
	s.Equal("field_mapping:v1::a:1", GenerateKey(PrefixFieldMapping, "a", 1))
}
