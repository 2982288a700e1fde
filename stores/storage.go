package stores

import (
	"os"

	"github.com/sirupsen/logrus"

	"interdeck/core"
	"interdeck/stores/aws"
	"interdeck/stores/filesystem"
	"interdeck/stores/memory"
	"interdeck/stores/mongo"
	"interdeck/stores/sqlite"
)

// Store is a union interface that includes all store types.
type Store interface {
	core.DeckStore
	core.PublishedStore
}

func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data" // Default path
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "interdeck.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewStore(bucketName)
	case "mongo":
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			logrus.Fatal("MONGO_URI environment variable must be set for mongo storage type")
		}
		dbName := os.Getenv("MONGO_DATABASE")
		if dbName == "" {
			dbName = "interdeck"
		}
		storageField["database"] = dbName
		store = mongo.NewStore(uri, dbName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
