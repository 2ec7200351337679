package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rss-digest/pkg/domain"
)

const (
	colSources     = "sources"
	colTags        = "tags"
	colArticles    = "articles"
	colArticleTags = "article_tags"
	colFavorites   = "favorites"
	colSettings    = "settings"
	colPrompts     = "prompts"

	settingsDocID = "settings"
)

// MongoClient wraps the MongoDB client and database connection
type MongoClient struct {
	mongoClient *mongo.Client
	database    *mongo.Database
}

// NewMongoClient creates a new database client
func NewMongoClient(connectionString, databaseName string) *MongoClient {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &MongoClient{}
	}

	return &MongoClient{
		mongoClient: mongoClient,
		database:    mongoClient.Database(databaseName),
	}
}

// Connect establishes connection to MongoDB
func (c *MongoClient) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *MongoClient) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// Database returns the selected database.
func (c *MongoClient) Database() *mongo.Database {
	return c.database
}

// MongoStore implements Store on MongoDB. Tag keywords are embedded in the tag document.
type MongoStore struct {
	client *MongoClient
	db     *mongo.Database
	now    func() time.Time
	newID  func() string
}

// NewMongoStore creates a store on a connected client.
func NewMongoStore(client *MongoClient) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:  uuid.NewString,
	}
}

// EnsureIndexes creates the unique indexes the store relies on for deduplication.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		colSources:  {unique("url")},
		colTags:     {unique("name")},
		colArticles: {unique("canonical_url"), {Keys: bson.D{{Key: "created_at", Value: 1}}}},
		colArticleTags: {
			{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "tag_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colFavorites: {unique("article_id")},
		colPrompts: {{
			Keys:    bson.D{{Key: "is_default", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"is_default": true}),
		}},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Connect(ctx)
}

func (s *MongoStore) Close() error {
	return s.client.Close(context.Background())
}

func (s *MongoStore) c(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func mapMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *MongoStore) ArticleExistsByCanonicalURL(ctx context.Context, canonicalURL string) (bool, error) {
	n, err := s.c(colArticles).CountDocuments(ctx, bson.M{"canonical_url": canonicalURL}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check article %q: %w", canonicalURL, err)
	}
	return n > 0, nil
}

func (s *MongoStore) CreateArticle(ctx context.Context, in domain.NewArticle) (domain.Article, error) {
	now := s.now()
	a := domain.Article{
		ID:           s.newID(),
		Title:        in.Title,
		Description:  in.Description,
		Link:         in.Link,
		CanonicalURL: in.CanonicalURL,
		PublishedAt:  in.PublishedAt,
		SourceID:     in.SourceID,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c(colArticles).InsertOne(ctx, a); err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", mapMongoError(err))
	}
	return a, nil
}

func (s *MongoStore) AttachTags(ctx context.Context, articleID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(tagIDs))
	for _, id := range tagIDs {
		link := domain.ArticleTag{ArticleID: articleID, TagID: id}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"article_id": articleID, "tag_id": id}).
			SetUpdate(bson.M{"$setOnInsert": link}).
			SetUpsert(true))
	}
	if _, err := s.c(colArticleTags).BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("attach tags to article %s: %w", articleID, err)
	}
	return nil
}

func (s *MongoStore) DeleteArticle(ctx context.Context, id string) error {
	res, err := s.c(colArticles).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return s.deleteArticleRelations(ctx, bson.M{"article_id": id})
}

// deleteArticleRelations removes tag links and favorites matching filter.
func (s *MongoStore) deleteArticleRelations(ctx context.Context, filter bson.M) error {
	if _, err := s.c(colArticleTags).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete article tags: %w", err)
	}
	if _, err := s.c(colFavorites).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	return nil
}

func (s *MongoStore) GetArticle(ctx context.Context, id string) (domain.ArticleView, error) {
	var a domain.Article
	if err := s.c(colArticles).FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return domain.ArticleView{}, fmt.Errorf("get article %s: %w", id, mapMongoError(err))
	}
	views, err := s.views(ctx, []domain.Article{a})
	if err != nil {
		return domain.ArticleView{}, err
	}
	return views[0], nil
}

func (s *MongoStore) ListArticles(ctx context.Context, q ArticleQuery) (ArticlePage, error) {
	filter, err := s.articleFilter(ctx, q)
	if err != nil {
		return ArticlePage{}, err
	}

	total, err := s.c(colArticles).CountDocuments(ctx, filter)
	if err != nil {
		return ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(q.Offset()))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cursor, err := s.c(colArticles).Find(ctx, filter, opts)
	if err != nil {
		return ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	articles := []domain.Article{}
	if err := cursor.All(ctx, &articles); err != nil {
		return ArticlePage{}, fmt.Errorf("decode articles: %w", err)
	}

	views, err := s.views(ctx, articles)
	if err != nil {
		return ArticlePage{}, err
	}
	return ArticlePage{Articles: views, Total: int(total)}, nil
}

func (s *MongoStore) articleFilter(ctx context.Context, q ArticleQuery) (bson.M, error) {
	var conds []bson.M
	if q.Status != "" {
		conds = append(conds, bson.M{"status": q.Status})
	}
	if q.TagID != "" {
		ids, err := s.distinctStrings(ctx, colArticleTags, "article_id", bson.M{"tag_id": q.TagID})
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{"_id": bson.M{"$in": ids}})
	}
	if q.FavoritesOnly {
		ids, err := s.distinctStrings(ctx, colFavorites, "article_id", bson.M{})
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{"_id": bson.M{"$in": ids}})
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		conds = append(conds, bson.M{"$or": []bson.M{{"title": re}, {"description": re}}})
	}
	if len(conds) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": conds}, nil
}

func (s *MongoStore) distinctStrings(ctx context.Context, coll, field string, filter bson.M) ([]string, error) {
	values, err := s.c(coll).Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", coll, field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

// views joins source names, matched tags and favorite flags onto articles.
func (s *MongoStore) views(ctx context.Context, articles []domain.Article) ([]domain.ArticleView, error) {
	views := make([]domain.ArticleView, 0, len(articles))
	if len(articles) == 0 {
		return views, nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	sources, err := s.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	sourceNames := make(map[string]string, len(sources))
	for _, src := range sources {
		sourceNames[src.ID] = src.Name
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	tagNames := make(map[string]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}

	cursor, err := s.c(colArticleTags).Find(ctx, bson.M{"article_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	var links []domain.ArticleTag
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode article tags: %w", err)
	}
	byArticle := map[string][]domain.MatchedTag{}
	for _, l := range links {
		if name, ok := tagNames[l.TagID]; ok {
			byArticle[l.ArticleID] = append(byArticle[l.ArticleID], domain.MatchedTag{ID: l.TagID, Name: name})
		}
	}

	favIDs, err := s.distinctStrings(ctx, colFavorites, "article_id", bson.M{"article_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	favs := make(map[string]bool, len(favIDs))
	for _, id := range favIDs {
		favs[id] = true
	}

	for _, a := range articles {
		matched := byArticle[a.ID]
		if matched == nil {
			matched = []domain.MatchedTag{}
		}
		views = append(views, domain.ArticleView{
			Article:    a,
			SourceName: sourceNames[a.SourceID],
			Tags:       matched,
			Favorited:  favs[a.ID],
		})
	}
	return views, nil
}

func (s *MongoStore) UpdateArticleStatus(ctx context.Context, id string, status domain.ArticleStatus) (domain.Article, error) {
	var a domain.Article
	err := s.c(colArticles).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": s.now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return domain.Article{}, fmt.Errorf("update article %s: %w", id, mapMongoError(err))
	}
	return a, nil
}

func (s *MongoStore) ToggleFavorite(ctx context.Context, articleID string) (bool, error) {
	res, err := s.c(colFavorites).DeleteOne(ctx, bson.M{"article_id": articleID})
	if err != nil {
		return false, fmt.Errorf("unfavorite article %s: %w", articleID, err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	n, err := s.c(colArticles).CountDocuments(ctx, bson.M{"_id": articleID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", articleID, err)
	}
	if n == 0 {
		return false, ErrNotFound
	}

	fav := domain.Favorite{ID: s.newID(), ArticleID: articleID, CreatedAt: s.now()}
	if _, err := s.c(colFavorites).InsertOne(ctx, fav); err != nil {
		return false, fmt.Errorf("favorite article %s: %w", articleID, mapMongoError(err))
	}
	return true, nil
}

func (s *MongoStore) FavoriteArticleIDs(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx, colFavorites, "article_id", bson.M{})
}

func (s *MongoStore) DeleteArticlesCreatedBefore(ctx context.Context, cutoff time.Time, exclude []string) (int64, error) {
	if exclude == nil {
		exclude = []string{}
	}
	filter := bson.M{"created_at": bson.M{"$lt": cutoff}, "_id": bson.M{"$nin": exclude}}

	ids, err := s.distinctStrings(ctx, colArticles, "_id", filter)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.c(colArticles).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	if err := s.deleteArticleRelations(ctx, bson.M{"article_id": bson.M{"$in": ids}}); err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) ListSources(ctx context.Context) ([]domain.Source, error) {
	cursor, err := s.c(colSources).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	sources := []domain.Source{}
	if err := cursor.All(ctx, &sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return sources, nil
}

func (s *MongoStore) CountSources(ctx context.Context) (int, error) {
	n, err := s.c(colSources).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) CreateSource(ctx context.Context, name, url string) (domain.Source, error) {
	src := domain.Source{ID: s.newID(), Name: name, URL: url, IsActive: true, CreatedAt: s.now()}
	if _, err := s.c(colSources).InsertOne(ctx, src); err != nil {
		return domain.Source{}, fmt.Errorf("insert source: %w", mapMongoError(err))
	}
	return src, nil
}

// DeleteSource removes the source and its articles with their relations.
func (s *MongoStore) DeleteSource(ctx context.Context, id string) error {
	res, err := s.c(colSources).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete source %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	ids, err := s.distinctStrings(ctx, colArticles, "_id", bson.M{"source_id": id})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.c(colArticles).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete articles of source %s: %w", id, err)
	}
	return s.deleteArticleRelations(ctx, bson.M{"article_id": bson.M{"$in": ids}})
}

func (s *MongoStore) SetSourceActive(ctx context.Context, id string, active bool) (domain.Source, error) {
	var src domain.Source
	err := s.c(colSources).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&src)
	if err != nil {
		return domain.Source{}, fmt.Errorf("update source %s: %w", id, mapMongoError(err))
	}
	return src, nil
}

func (s *MongoStore) ListTags(ctx context.Context) ([]domain.Tag, error) {
	cursor, err := s.c(colTags).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags := []domain.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	for i := range tags {
		if tags[i].Keywords == nil {
			tags[i].Keywords = []domain.Keyword{}
		}
	}
	return tags, nil
}

func (s *MongoStore) keywordDocs(tagID string, keywords []string) []domain.Keyword {
	out := make([]domain.Keyword, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, domain.Keyword{ID: s.newID(), TagID: tagID, Keyword: k})
	}
	return out
}

func (s *MongoStore) CreateTag(ctx context.Context, name string, keywords []string) (domain.Tag, error) {
	t := domain.Tag{ID: s.newID(), Name: name, IsActive: true, CreatedAt: s.now()}
	t.Keywords = s.keywordDocs(t.ID, keywords)
	if _, err := s.c(colTags).InsertOne(ctx, t); err != nil {
		return domain.Tag{}, fmt.Errorf("insert tag: %w", mapMongoError(err))
	}
	return t, nil
}

func (s *MongoStore) ReplaceTagKeywords(ctx context.Context, tagID string, keywords []string) ([]domain.Keyword, error) {
	kws := s.keywordDocs(tagID, keywords)
	res, err := s.c(colTags).UpdateOne(ctx, bson.M{"_id": tagID}, bson.M{"$set": bson.M{"keywords": kws}})
	if err != nil {
		return nil, fmt.Errorf("replace keywords of tag %s: %w", tagID, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return kws, nil
}

func (s *MongoStore) SetTagActive(ctx context.Context, id string, active bool) (domain.Tag, error) {
	var t domain.Tag
	err := s.c(colTags).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("update tag %s: %w", id, mapMongoError(err))
	}
	return t, nil
}

func (s *MongoStore) DeleteTag(ctx context.Context, id string) error {
	res, err := s.c(colTags).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.c(colArticleTags).DeleteMany(ctx, bson.M{"tag_id": id}); err != nil {
		return fmt.Errorf("delete links of tag %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	var st domain.Settings
	err := s.c(colSettings).FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *MongoStore) UpdateSettings(ctx context.Context, retentionDays int) (domain.Settings, error) {
	st := domain.Settings{ArticleRetentionDays: retentionDays, UpdatedAt: s.now()}
	_, err := s.c(colSettings).UpdateOne(ctx,
		bson.M{"_id": settingsDocID},
		bson.M{"$set": st},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return st, nil
}

func (s *MongoStore) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	cursor, err := s.c(colPrompts).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	prompts := []domain.Prompt{}
	if err := cursor.All(ctx, &prompts); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	return prompts, nil
}

func (s *MongoStore) GetPrompt(ctx context.Context, id string) (domain.Prompt, error) {
	var p domain.Prompt
	if err := s.c(colPrompts).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return domain.Prompt{}, fmt.Errorf("get prompt %s: %w", id, mapMongoError(err))
	}
	return p, nil
}

func (s *MongoStore) GetDefaultPrompt(ctx context.Context) (domain.Prompt, error) {
	var p domain.Prompt
	if err := s.c(colPrompts).FindOne(ctx, bson.M{"is_default": true}).Decode(&p); err != nil {
		return domain.Prompt{}, fmt.Errorf("get default prompt: %w", mapMongoError(err))
	}
	return p, nil
}

// clearDefault unsets the default flag on every prompt except exceptID.
// Without a replica set there is no transaction, so the partial unique index
// is what keeps two defaults from coexisting.
func (s *MongoStore) clearDefault(ctx context.Context, exceptID string, now time.Time) error {
	_, err := s.c(colPrompts).UpdateMany(ctx,
		bson.M{"is_default": true, "_id": bson.M{"$ne": exceptID}},
		bson.M{"$set": bson.M{"is_default": false, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("clear default prompt: %w", err)
	}
	return nil
}

func (s *MongoStore) CreatePrompt(ctx context.Context, in domain.Prompt) (domain.Prompt, error) {
	now := s.now()
	p := domain.Prompt{
		ID:        s.newID(),
		Name:      in.Name,
		Template:  in.Template,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.IsDefault {
		if err := s.clearDefault(ctx, p.ID, now); err != nil {
			return domain.Prompt{}, err
		}
	}
	if _, err := s.c(colPrompts).InsertOne(ctx, p); err != nil {
		return domain.Prompt{}, fmt.Errorf("insert prompt: %w", mapMongoError(err))
	}
	return p, nil
}

func (s *MongoStore) UpdatePrompt(ctx context.Context, id string, update domain.PromptUpdate) (domain.Prompt, error) {
	now := s.now()
	set := bson.M{"updated_at": now}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Template != nil {
		set["template"] = *update.Template
	}
	if update.IsDefault != nil {
		if *update.IsDefault {
			if err := s.clearDefault(ctx, id, now); err != nil {
				return domain.Prompt{}, err
			}
		}
		set["is_default"] = *update.IsDefault
	}

	var p domain.Prompt
	err := s.c(colPrompts).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("update prompt %s: %w", id, mapMongoError(err))
	}
	return p, nil
}

func (s *MongoStore) DeletePrompt(ctx context.Context, id string) error {
	res, err := s.c(colPrompts).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete prompt %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
